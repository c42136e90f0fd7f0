// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth

import (
	"context"
	"fmt"
	"net/url"
)

// # Email Dispatch

// EmailSender defines the contract for dispatching verification mail.
//
// # Why an interface?
//
// The domain only decides WHEN a verification email goes out; the transport
// (SMTP, a provider API, a test double) is injected from the outside.
type EmailSender interface {

	/*
		SendVerificationEmail delivers the verification link to the account's
		email address.

		Parameters:
		  - context: context.Context
		  - account: *Account (recipient)
		  - verificationURL: string (fully built clickable link)

		Returns:
		  - error: Transport failures
	*/
	SendVerificationEmail(context context.Context, account *Account, verificationURL string) error
}

// VerificationURL builds the clickable verification link embedded in
// outgoing email, pointing back at the public verify-email endpoint.
func VerificationURL(baseURL, token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", baseURL, url.QueryEscape(token))
}
