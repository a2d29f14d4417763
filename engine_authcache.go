package goPortal

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goPortal/internal/stores"
)

// AuthorizationSnapshot returns the user's cached authorization view: account
// status, scope systems, and the current auth/profile versions. On a cache
// miss the snapshot is rebuilt from the [UserProvider] and stored with the
// configured TTL. When the auth cache is disabled every call hits the
// provider directly.
//
// AuthorizationSnapshot may return an error when input validation, dependency calls, or security checks fail.
// AuthorizationSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuthorizationSnapshot(ctx context.Context, userID string) (*AuthSnapshot, error) {
	if e == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}

	if e.authCache != nil {
		record, err := e.authCache.Get(ctx, userID)
		if err == nil {
			return &AuthSnapshot{
				UserID:         record.UserID,
				Status:         AccountStatus(record.Status),
				Systems:        append([]string(nil), record.Systems...),
				AuthVersion:    record.AuthVersion,
				ProfileVersion: record.ProfileVersion,
			}, nil
		}
		if !errors.Is(err, stores.ErrAuthSnapshotNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	user, err := e.lookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &AuthSnapshot{
		UserID:         user.UserID,
		Status:         user.Status,
		Systems:        append([]string(nil), user.Systems...),
		AuthVersion:    user.AuthVersion,
		ProfileVersion: user.ProfileVersion,
	}

	if e.authCache != nil {
		record := &stores.AuthSnapshotRecord{
			UserID:         snapshot.UserID,
			Status:         uint8(snapshot.Status),
			Systems:        snapshot.Systems,
			AuthVersion:    snapshot.AuthVersion,
			ProfileVersion: snapshot.ProfileVersion,
		}
		// Best effort: a failed write just means the next call rebuilds.
		_ = e.authCache.Save(ctx, record, e.config.AuthCache.TTL)
	}

	return snapshot, nil
}

// InvalidateAuthorization drops the cached snapshot so the next read rebuilds
// from the [UserProvider]. Idempotent.
//
// InvalidateAuthorization may return an error when input validation, dependency calls, or security checks fail.
// InvalidateAuthorization does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) InvalidateAuthorization(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if e.authCache == nil {
		return nil
	}

	if err := e.authCache.Invalidate(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return nil
}
