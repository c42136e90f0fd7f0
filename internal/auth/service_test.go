// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinora-dev/kinora/internal/auth"
	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/sec"
)

const (
	testSecret  = "unit-test-signing-secret"
	testBaseURL = "http://localhost:8080"
)

// testEnv wires a full service stack over the in-memory repository.
type testEnv struct {
	repo     *memoryAccountRepository
	mailer   *fakeMailer
	registry *auth.SessionRegistry
	service  *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec, err := sec.NewTokenCodec(testSecret, "kinora-test")
	require.NoError(t, err)

	repo := newMemoryAccountRepository()
	mailer := &fakeMailer{}
	registry := auth.NewSessionRegistry(repo, codec, time.Hour)
	verifications := auth.NewVerificationTokenManager(repo)
	service := auth.NewService(repo, registry, verifications, mailer, testBaseURL)

	return &testEnv{
		repo:     repo,
		mailer:   mailer,
		registry: registry,
		service:  service,
	}
}

func janeInput() auth.RegisterInput {
	return auth.RegisterInput{
		Fullname: "Jane Doe",
		Username: "janedoe",
		Email:    "jane@example.com",
		Password: "secret123",
	}
}

// registerAndVerify enrolls an account and redeems its verification token,
// returning the login-ready profile.
func registerAndVerify(t *testing.T, env *testEnv, input auth.RegisterInput) *auth.Profile {
	t.Helper()

	profile, err := env.service.Register(context.Background(), input)
	require.NoError(t, err)

	stored := env.repo.get(profile.ID)
	require.NotNil(t, stored.VerificationToken)

	verified, err := env.service.VerifyEmail(context.Background(), *stored.VerificationToken)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)

	return verified
}

// # Registration

/*
TestRegister_CreatesUnverifiedAccount covers the happy-path enrollment: the
account starts unverified, carries a pending 256-bit verification token with
a 24 hour expiry, and one verification email goes out.
*/
func TestRegister_CreatesUnverifiedAccount(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	assert.NotZero(t, profile.ID)
	assert.Equal(t, "Jane Doe", profile.Fullname)
	assert.Equal(t, "janedoe", profile.Username)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.False(t, profile.IsVerified)

	stored := env.repo.get(profile.ID)
	require.NotNil(t, stored.VerificationToken)
	assert.Len(t, *stored.VerificationToken, 64) // 32 random bytes, hex-encoded
	require.NotNil(t, stored.VerificationTokenExpires)
	assert.WithinDuration(t, time.Now().Add(auth.VerificationTokenTTL), *stored.VerificationTokenExpires, time.Minute)
	assert.Nil(t, stored.SessionToken)

	require.Equal(t, 1, env.mailer.sentCount())
	assert.Contains(t, env.mailer.sent[0], testBaseURL+"/api/v1/auth/verify-email?token=")
	assert.Contains(t, env.mailer.sent[0], *stored.VerificationToken)
}

/*
TestRegister_PasswordIsHashed verifies the plaintext password never reaches
storage.
*/
func TestRegister_PasswordIsHashed(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	stored := env.repo.get(profile.ID)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret123", stored.PasswordHash))
}

/*
TestRegister_DuplicateEmail verifies the conflict rejection leaves the store
untouched: no second row, no second email.
*/
func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	duplicate := janeInput()
	duplicate.Username = "janedoe2"
	_, err = env.service.Register(context.Background(), duplicate)

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	assert.Equal(t, 1, env.repo.count())
	assert.Equal(t, 1, env.mailer.sentCount())
}

/*
TestRegister_DuplicateUsername covers the username side of the uniqueness
guard.
*/
func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	duplicate := janeInput()
	duplicate.Email = "jane2@example.com"
	_, err = env.service.Register(context.Background(), duplicate)

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	assert.Equal(t, 1, env.repo.count())
}

/*
TestRegister_Validation rejects malformed input before anything is persisted.
*/
func TestRegister_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*auth.RegisterInput)
	}{
		{"missing fullname", func(input *auth.RegisterInput) { input.Fullname = "" }},
		{"missing username", func(input *auth.RegisterInput) { input.Username = "" }},
		{"missing email", func(input *auth.RegisterInput) { input.Email = "" }},
		{"invalid email", func(input *auth.RegisterInput) { input.Email = "not-an-email" }},
		{"missing password", func(input *auth.RegisterInput) { input.Password = "" }},
		{"short password", func(input *auth.RegisterInput) { input.Password = "12345" }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			env := newTestEnv(t)
			input := janeInput()
			testCase.mutate(&input)

			_, err := env.service.Register(context.Background(), input)

			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
			assert.Equal(t, 0, env.repo.count())
		})
	}
}

/*
TestRegister_EmailFailureDoesNotFailRegistration verifies dispatch is best
effort: the account row survives a mail outage, recoverable via resend.
*/
func TestRegister_EmailFailureDoesNotFailRegistration(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.failWith = errors.New("smtp connection refused")

	profile, err := env.service.Register(context.Background(), janeInput())

	require.NoError(t, err)
	assert.Equal(t, 1, env.repo.count())
	assert.NotNil(t, env.repo.get(profile.ID).VerificationToken)
}

// # Login

/*
TestLogin_RequiresVerifiedEmail walks the gate in order: a correct password
on an unverified account reports NOT_VERIFIED, and the same credentials
succeed right after verification.
*/
func TestLogin_RequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	_, err = env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotVerified))

	stored := env.repo.get(profile.ID)
	_, err = env.service.VerifyEmail(context.Background(), *stored.VerificationToken)
	require.NoError(t, err)

	session, err := env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionToken)
	assert.True(t, session.User.IsVerified)
}

/*
TestLogin_InvalidCredentials verifies that an unknown email and a wrong
password are indistinguishable, sharing one code and one exact message.
*/
func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	registerAndVerify(t, env, janeInput())

	_, unknownEmailErr := env.service.Login(context.Background(), auth.LoginInput{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	_, wrongPasswordErr := env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})

	require.Error(t, unknownEmailErr)
	require.Error(t, wrongPasswordErr)
	assert.True(t, apperr.IsCode(unknownEmailErr, apperr.CodeInvalidCredentials))
	assert.True(t, apperr.IsCode(wrongPasswordErr, apperr.CodeInvalidCredentials))
	assert.Equal(t, unknownEmailErr.Error(), wrongPasswordErr.Error())
}

/*
TestLogin_WrongPasswordOnUnverifiedAccount pins the check order: the password
is verified before the verification status, so a wrong password on an
unverified account must NOT reveal that the account is unverified.
*/
func TestLogin_WrongPasswordOnUnverifiedAccount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	_, err = env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredentials))
	assert.False(t, apperr.IsCode(err, apperr.CodeNotVerified))
}

/*
TestLogin_SecondLoginSupersedesFirst covers single-active-session: a second
login returns a different token, and only the newest one still validates.
*/
func TestLogin_SecondLoginSupersedesFirst(t *testing.T) {
	env := newTestEnv(t)
	registerAndVerify(t, env, janeInput())

	credentials := auth.LoginInput{Email: "jane@example.com", Password: "secret123"}

	first, err := env.service.Login(context.Background(), credentials)
	require.NoError(t, err)
	second, err := env.service.Login(context.Background(), credentials)
	require.NoError(t, err)

	require.NotEqual(t, first.SessionToken, second.SessionToken)

	_, err = env.registry.Validate(context.Background(), first.SessionToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	account, err := env.registry.Validate(context.Background(), second.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, account.ID)
}

// # Logout & Refresh

/*
TestLogout_RevokesSession verifies the stored token is cleared and the
presented one stops validating, and that logout is idempotent.
*/
func TestLogout_RevokesSession(t *testing.T) {
	env := newTestEnv(t)
	profile := registerAndVerify(t, env, janeInput())

	session, err := env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(context.Background(), profile.ID))
	assert.Nil(t, env.repo.get(profile.ID).SessionToken)

	_, err = env.registry.Validate(context.Background(), session.SessionToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	// Logging out again with no live session still succeeds.
	require.NoError(t, env.service.Logout(context.Background(), profile.ID))
}

/*
TestRefreshSession_RotatesToken verifies rotation: the refreshed token
differs from the old one, the old one dies, the new one works.
*/
func TestRefreshSession_RotatesToken(t *testing.T) {
	env := newTestEnv(t)
	registerAndVerify(t, env, janeInput())

	session, err := env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := env.service.RefreshSession(context.Background(), session.SessionToken)
	require.NoError(t, err)
	require.NotEqual(t, session.SessionToken, refreshed.SessionToken)

	_, err = env.registry.Validate(context.Background(), session.SessionToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = env.registry.Validate(context.Background(), refreshed.SessionToken)
	assert.NoError(t, err)
}

/*
TestRefreshSession_RejectsDeadToken covers refreshing with a revoked token
and with garbage.
*/
func TestRefreshSession_RejectsDeadToken(t *testing.T) {
	env := newTestEnv(t)
	profile := registerAndVerify(t, env, janeInput())

	session, err := env.service.Login(context.Background(), auth.LoginInput{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NoError(t, env.service.Logout(context.Background(), profile.ID))

	_, err = env.service.RefreshSession(context.Background(), session.SessionToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))

	_, err = env.service.RefreshSession(context.Background(), "not-a-token")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

// # Email Verification

/*
TestVerifyEmail_SingleUse verifies a token works exactly once; the second
redemption reports it invalid.
*/
func TestVerifyEmail_SingleUse(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)
	token := *env.repo.get(profile.ID).VerificationToken

	verified, err := env.service.VerifyEmail(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	stored := env.repo.get(profile.ID)
	assert.Nil(t, stored.VerificationToken)
	assert.Nil(t, stored.VerificationTokenExpires)

	_, err = env.service.VerifyEmail(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

/*
TestVerifyEmail_ExpiredToken verifies a token past its window is rejected
and the account stays unverified.
*/
func TestVerifyEmail_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)
	token := *env.repo.get(profile.ID).VerificationToken

	env.repo.expireVerificationToken(profile.ID)

	_, err = env.service.VerifyEmail(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
	assert.False(t, env.repo.get(profile.ID).IsVerified)
}

/*
TestVerifyEmail_UnknownToken covers garbage and empty tokens.
*/
func TestVerifyEmail_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.VerifyEmail(context.Background(), "deadbeef")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))

	_, err = env.service.VerifyEmail(context.Background(), "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

// # Resend Verification

/*
TestResendVerification_ReissuesToken verifies the replacement semantics: the
old link dies, the newest one verifies.
*/
func TestResendVerification_ReissuesToken(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)
	oldToken := *env.repo.get(profile.ID).VerificationToken

	require.NoError(t, env.service.ResendVerificationEmail(context.Background(), "jane@example.com"))

	newToken := *env.repo.get(profile.ID).VerificationToken
	require.NotEqual(t, oldToken, newToken)
	assert.Equal(t, 2, env.mailer.sentCount())

	_, err = env.service.VerifyEmail(context.Background(), oldToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))

	verified, err := env.service.VerifyEmail(context.Background(), newToken)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

/*
TestResendVerification_Rejections covers the unknown-email and
already-verified branches.
*/
func TestResendVerification_Rejections(t *testing.T) {
	env := newTestEnv(t)
	registerAndVerify(t, env, janeInput())

	err := env.service.ResendVerificationEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	err = env.service.ResendVerificationEmail(context.Background(), "jane@example.com")
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyVerified))
}

/*
TestResendVerification_SurfacesTransportFailure verifies that, unlike during
registration, a mail outage on resend reaches the caller.
*/
func TestResendVerification_SurfacesTransportFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Register(context.Background(), janeInput())
	require.NoError(t, err)

	env.mailer.failWith = errors.New("smtp connection refused")
	err = env.service.ResendVerificationEmail(context.Background(), "jane@example.com")

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeEmailTransport))
}

// # End-to-End Lifecycle

/*
TestAccountLifecycle walks the full journey: register, fail to log in while
unverified, verify via the emailed link, log in, refresh, and log out.
*/
func TestAccountLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Register.
	profile, err := env.service.Register(ctx, janeInput())
	require.NoError(t, err)
	require.False(t, profile.IsVerified)

	// Login blocked until verification.
	credentials := auth.LoginInput{Email: "jane@example.com", Password: "secret123"}
	_, err = env.service.Login(ctx, credentials)
	require.True(t, apperr.IsCode(err, apperr.CodeNotVerified))

	// Redeem the token exactly as it appears in the emailed link.
	require.Equal(t, 1, env.mailer.sentCount())
	link := env.mailer.sent[0]
	token := link[strings.Index(link, "token=")+len("token="):]
	_, err = env.service.VerifyEmail(ctx, token)
	require.NoError(t, err)

	// Login now succeeds.
	session, err := env.service.Login(ctx, credentials)
	require.NoError(t, err)

	account, err := env.registry.Validate(ctx, session.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, account.ID)

	// Refresh rotates; logout kills the session.
	refreshed, err := env.service.RefreshSession(ctx, session.SessionToken)
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(ctx, profile.ID))
	_, err = env.registry.Validate(ctx, refreshed.SessionToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}
