package goPortal

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goPortal/events"
	"github.com/MrEthical07/goPortal/passcrypt"
)

// ChangePassword redeems a PASSWORD action ticket and rotates the user's
// credential. The password arrives either as AES-GCM ciphertext (when
// transport crypto is enabled) or as plaintext; it is policy-checked,
// argon2id-hashed, and handed to the [UserProvider]. A successful change
// bumps the token version, so every live portal session dies, drops the
// cached authorization snapshot, and publishes USER_PASSWORD_CHANGED.
//
// The event publish is at-least-once and sits outside any transactional
// boundary with the credential update: a failed publish is audited, never
// rolled back.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, ticketID, password string) error {
	if e == nil || e.userProvider == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}
	if password == "" {
		return fmt.Errorf("%w: empty password", ErrInvalidArgument)
	}

	userID, err := e.ConsumeActionTicket(ctx, ticketID, ScopePassword)
	if err != nil {
		return err
	}

	plaintext, err := e.decryptor.Decrypt(password, password)
	if err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPasswordChange,
			UserID:    userID,
			Success:   false,
			Error:     errString(ErrDecryptionFailed),
		})
		switch {
		case errors.Is(err, passcrypt.ErrInvalidCiphertext),
			errors.Is(err, passcrypt.ErrDecryptFailed),
			errors.Is(err, passcrypt.ErrKeyUnset):
			return fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
		default:
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	if len(plaintext) < e.config.Password.MinLength {
		return fmt.Errorf("%w: shorter than %d characters", ErrPasswordPolicy, e.config.Password.MinLength)
	}

	user, err := e.lookupUser(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := e.passwordHash.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := e.userProvider.UpdatePasswordHash(ctx, userID, hash); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPasswordChange,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
		})
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	newVersion, err := e.tokenVersions.Bump(ctx, userID)
	if err != nil {
		// Credential already rotated; report the bump failure, the old
		// sessions stay alive until their TTL fires.
		return fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}
	e.metricInc(MetricTokenVersionBumped)

	if e.authCache != nil {
		_ = e.authCache.Invalidate(ctx, userID)
	}

	e.metricInc(MetricPasswordChanged)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventPasswordChange,
		UserID:    userID,
		TicketID:  ticketID,
		Success:   true,
	})

	e.publishEvent(ctx, userID, newVersion, user.ProfileVersion, events.PasswordChangedPayload{})
	return nil
}
