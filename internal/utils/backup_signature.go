package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SignBackupPayload computes a hex-encoded HMAC-SHA256 over the canonical
// JSON encoding of the payload. The key is the shared secret salted with the
// exporting user's email, so a backup only verifies for the account that
// produced it.
func SignBackupPayload(payload any, secret string, email string) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup payload: %w", err)
	}
	mac := hmac.New(sha256.New, []byte(secret+":"+email))
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyBackupSignature recomputes the payload signature and compares it in
// constant time against the one carried in the backup file.
func VerifyBackupSignature(payload any, secret string, email string, signature string) (bool, error) {
	expected, err := SignBackupPayload(payload, secret, email)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
