// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package sec

// Identity is the verified caller identity the access guard exposes to
// downstream handlers after a session token passes full validation.
//
// # Freshness
//
// Values are taken from the stored account record at validation time, not
// from the token payload, so a username change is reflected immediately.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
