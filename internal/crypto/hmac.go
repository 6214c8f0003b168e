package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignData computes an HMAC-SHA256 signature over data
func SignData(data string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignedData checks a signature in constant time
func ValidateSignedData(data, signature string, key []byte) bool {
	expected, err := base64.URLEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return hmac.Equal(expected, mac.Sum(nil))
}
