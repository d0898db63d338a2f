package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

// Signer handles Binance signed-endpoint authentication (HMAC SHA256).
type Signer struct {
	apiKey    string
	apiSecret string
}

// NewSigner creates a new Signer instance
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{apiKey: apiKey, apiSecret: apiSecret}
}

// APIKey returns the public key for the X-MBX-APIKEY header.
func (s *Signer) APIKey() string {
	return s.apiKey
}

// Sign adds the timestamp parameter and returns the final query string with
// the signature appended last, as Binance requires:
//
//	signature = hex(hmac_sha256(secret, queryString))
func (s *Signer) Sign(params url.Values) string {
	params.Set("timestamp", fmt.Sprintf("%d", time.Now().UnixMilli()))
	payload := params.Encode()
	return payload + "&signature=" + computeHmacSha256(payload, s.apiSecret)
}

func computeHmacSha256(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
