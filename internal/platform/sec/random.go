// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a hex-encoded string of byteLength random
// bytes from the operating system CSPRNG.
//
// A byteLength of 32 yields 256 bits of entropy in a 64-character string.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
