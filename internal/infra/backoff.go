package infra

import "time"

const maxBackoff = 60 * time.Second

// CalculateBackoff returns an exponential reconnect delay: 1s, 2s, 4s, ...
// capped at 60s. Used by the websocket stream worker; the trading cycle
// itself uses the fixed intervals from Config.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return time.Second
	}
	delay := time.Second << uint(retryCount)
	if delay > maxBackoff || delay <= 0 {
		return maxBackoff
	}
	return delay
}
