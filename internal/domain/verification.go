package domain

import (
	"context"
	"time"
)

const (
	// VerificationTTL is how long a code stays redeemable after creation.
	VerificationTTL = 10 * time.Minute
	// VerificationMaxAttempts locks (deletes) a record once reached.
	VerificationMaxAttempts = 5
)

// VerificationRecord tracks one email verification code. The raw code is
// never persisted, only its bcrypt hash.
type VerificationRecord struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	CodeHash   string     `json:"code_hash"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Attempts   int        `json:"attempts"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

func (r *VerificationRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *VerificationRecord) IsVerified() bool {
	return r.VerifiedAt != nil
}

func (r *VerificationRecord) IsConsumed() bool {
	return r.ConsumedAt != nil
}

type VerificationRepository interface {
	// CreateRecord issues a fresh 6-digit code for email, superseding any
	// prior unconsumed record for the same address. Returns the stored
	// record and the raw code for delivery.
	CreateRecord(ctx context.Context, email string) (*VerificationRecord, string, error)
	// Verify checks a submitted code. Mismatches increment the attempt
	// counter; the record is deleted on expiry or when the counter reaches
	// VerificationMaxAttempts. A successful match sets VerifiedAt and is
	// idempotent.
	Verify(ctx context.Context, id, code string) (*VerificationRecord, error)
	// Consume stamps ConsumedAt exactly once on a verified, unexpired
	// record. A second call fails with ErrVerificationConsumed.
	Consume(ctx context.Context, id string) (*VerificationRecord, error)
	// EnsureValid performs the same precondition checks as Consume without
	// mutating anything.
	EnsureValid(ctx context.Context, id string) (*VerificationRecord, error)
}
