package server

import "errors"

// Login flow failure kinds. Every provider or network failure in the
// callback is converted to one of these at the handler boundary; none of
// them may escape as an unhandled fault.
var (
	// ErrUnknownProvider: the path parameter doesn't resolve in the registry.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidState: the returned state was never issued, already
	// consumed, expired, or bound to a different provider.
	ErrInvalidState = errors.New("invalid state")

	// ErrTokenExchangeFailed: the code-for-token exchange failed at the
	// provider. Authorization codes are single-use, so this is never retried.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrProfileFetchFailed: the userinfo request failed or returned
	// malformed JSON.
	ErrProfileFetchFailed = errors.New("profile fetch failed")
)
