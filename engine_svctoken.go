package goPortal

import (
	"fmt"
)

// IssueServiceToken mints a short-lived internal service token for the named
// system. Boundary layers present it on privileged calls such as the forced
// logout endpoint; it is never handed to end users. Requires service tokens
// to be enabled through [Builder.WithServiceTokenSecret].
//
// IssueServiceToken may return an error when input validation, dependency calls, or security checks fail.
// IssueServiceToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueServiceToken(systemCode string) (string, error) {
	if e == nil || e.serviceTokens == nil {
		return "", ErrEngineNotReady
	}
	if systemCode == "" {
		return "", fmt.Errorf("%w: empty system code", ErrInvalidArgument)
	}

	token, err := e.serviceTokens.Issue(systemCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return token, nil
}

// VerifyServiceToken checks an internal service token and returns the system
// code it was issued to. Every verification failure collapses to
// [ErrServiceTokenInvalid]; callers get no hint which check tripped.
//
// VerifyServiceToken may return an error when input validation, dependency calls, or security checks fail.
// VerifyServiceToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyServiceToken(token string) (string, error) {
	if e == nil || e.serviceTokens == nil {
		return "", ErrEngineNotReady
	}
	if token == "" {
		return "", ErrServiceTokenInvalid
	}

	systemCode, err := e.serviceTokens.Verify(token)
	if err != nil {
		return "", ErrServiceTokenInvalid
	}

	return systemCode, nil
}
