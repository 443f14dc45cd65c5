// File: internal/session/store.go
package session

import (
	"context"

	"github.com/google/uuid"
)

// Session is the authenticated state persisted after a successful login or
// signup continuation.
type Session struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	AccountID uuid.UUID `json:"account_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}

// Store holds one permanent and one temporary (pre-verification) session
// slot per account. Orchestrators receive it by injection; nothing reads
// session state ambiently.
type Store interface {
	// Save writes the permanent slot, overwriting any previous session.
	Save(ctx context.Context, s Session) error
	// SaveTemporary stashes a provisional session pending email verification.
	SaveTemporary(ctx context.Context, s Session) error
	// Load returns the permanent session, or nil when none exists.
	Load(ctx context.Context, accountID uuid.UUID) (*Session, error)
	// Clear removes both slots for the account.
	Clear(ctx context.Context, accountID uuid.UUID) error
	// PromoteTemporary atomically moves the temporary slot into the permanent
	// slot: either all fields move or none do. The temporary slot is cleared
	// afterwards in every case, even when its data is partial.
	PromoteTemporary(ctx context.Context, accountID uuid.UUID) (*Session, error)
}
