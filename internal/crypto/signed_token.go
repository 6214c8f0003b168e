package crypto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TokenSigner provides HMAC-signed JSON tokens with optional expiry.
// The session cookie wraps the opaque session token in one of these so a
// tampered or expired cookie is rejected before any store lookup.
type TokenSigner struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenSigner creates a new token signer
func NewTokenSigner(signingKey []byte, ttl time.Duration) TokenSigner {
	return TokenSigner{
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// TokenData wraps user data with metadata
type TokenData struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
}

// Sign marshals data to JSON, signs it with HMAC, and returns a base64-encoded token
func (ts *TokenSigner) Sign(v any) (string, error) {
	userData, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}

	tokenData := TokenData{
		Data: userData,
	}
	if ts.ttl > 0 {
		tokenData.ExpiresAt = time.Now().Add(ts.ttl)
	}

	jsonData, err := json.Marshal(tokenData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token data: %w", err)
	}

	signature := SignData(string(jsonData), ts.signingKey)

	return fmt.Sprintf("%s.%s", base64.URLEncoding.EncodeToString(jsonData), signature), nil
}

// Verify validates the signature, checks expiry, and unmarshals the data
func (ts *TokenSigner) Verify(token string, v any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid token format")
	}

	jsonData, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return fmt.Errorf("failed to decode token data: %w", err)
	}

	if !ValidateSignedData(string(jsonData), parts[1], ts.signingKey) {
		return fmt.Errorf("invalid signature")
	}

	var tokenData TokenData
	if err := json.Unmarshal(jsonData, &tokenData); err != nil {
		return fmt.Errorf("failed to unmarshal token data: %w", err)
	}

	if !tokenData.ExpiresAt.IsZero() && time.Now().After(tokenData.ExpiresAt) {
		return fmt.Errorf("token expired")
	}

	if err := json.Unmarshal(tokenData.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	return nil
}
