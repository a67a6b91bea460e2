package util

import (
	"crypto/rand"
	"fmt"
)

// sessionIDAlphabet keeps session IDs safe to embed in log lines and paths.
const sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

// NewSessionID returns a random identifier tagged onto the logs of one relay
// run, so interleaved runs can be told apart.
func NewSessionID(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	for i := range b {
		b[i] = sessionIDAlphabet[int(b[i])%len(sessionIDAlphabet)]
	}
	return string(b), nil
}
