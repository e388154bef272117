package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vandien284/scenta-sub000/internal/blob"
	"github.com/vandien284/scenta-sub000/internal/domain"
)

const (
	// Consumed records are kept around for a day for traceability, expired
	// ones for an hour so Verify can still answer "expired" instead of
	// "not found" right after the deadline.
	consumedRetention = 24 * time.Hour
	expiredRetention  = time.Hour
)

var _ domain.VerificationRepository = (*blobVerificationRepository)(nil)

// blobVerificationRepository persists the full record set on every mutation.
// Last-write-wins is acceptable given the 10-minute code lifetime; the mutex
// serializes writers within this process.
type blobVerificationRepository struct {
	store blob.Store
	log   *logrus.Logger
	now   func() time.Time
	mu    sync.Mutex
}

func NewBlobVerificationRepository(store blob.Store, logger *logrus.Logger) domain.VerificationRepository {
	return &blobVerificationRepository{
		store: store,
		log:   logger,
		now:   time.Now,
	}
}

func (r *blobVerificationRepository) loadRecords(ctx context.Context) ([]domain.VerificationRecord, error) {
	var records []domain.VerificationRecord
	if err := r.store.Load(ctx, &records); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load verification records: %w", err)
	}
	return records, nil
}

func (r *blobVerificationRepository) saveRecords(ctx context.Context, records []domain.VerificationRecord) error {
	if err := r.store.Save(ctx, records); err != nil {
		return fmt.Errorf("could not persist verification records: %w", err)
	}
	return nil
}

// sweepStale drops records nobody can act on anymore. Best effort: callers
// persist the result as part of their own write.
func (r *blobVerificationRepository) sweepStale(records []domain.VerificationRecord) []domain.VerificationRecord {
	now := r.now()
	kept := records[:0]
	for _, rec := range records {
		switch {
		case rec.IsConsumed() && now.Sub(*rec.ConsumedAt) > consumedRetention:
		case !rec.IsConsumed() && now.Sub(rec.ExpiresAt) > expiredRetention:
		default:
			kept = append(kept, rec)
		}
	}
	if pruned := len(records) - len(kept); pruned > 0 {
		r.log.Debugf("Verification: pruned %d stale records", pruned)
	}
	return kept
}

func randomSixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("could not generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (r *blobVerificationRepository) CreateRecord(ctx context.Context, email string) (*domain.VerificationRecord, string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, "", errors.New("email cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, "", err
	}
	records = r.sweepStale(records)

	// At most one active record per email: supersede, never merge.
	kept := records[:0]
	for _, rec := range records {
		if rec.Email == normalized && !rec.IsConsumed() {
			r.log.Infof("Verification: superseding record %s for %s", rec.ID, normalized)
			continue
		}
		kept = append(kept, rec)
	}
	records = kept

	code, err := randomSixDigitCode()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("could not hash verification code: %w", err)
	}

	now := r.now()
	record := domain.VerificationRecord{
		ID:        uuid.NewString(),
		Email:     normalized,
		CodeHash:  string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(domain.VerificationTTL),
	}
	records = append(records, record)

	if err := r.saveRecords(ctx, records); err != nil {
		return nil, "", err
	}

	r.log.Infof("Verification: created record %s for %s, expires at %s",
		record.ID, normalized, record.ExpiresAt.Format(time.RFC3339))
	return &record, code, nil
}

func (r *blobVerificationRepository) Verify(ctx context.Context, id, code string) (*domain.VerificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfRecord(records, id)
	if idx < 0 {
		return nil, domain.ErrVerificationNotFound
	}
	rec := &records[idx]

	if rec.IsConsumed() {
		return nil, domain.ErrVerificationConsumed
	}
	if rec.IsExpired(r.now()) {
		if err := r.saveRecords(ctx, removeRecord(records, idx)); err != nil {
			r.log.Errorf("Verification: failed to delete expired record %s: %v", id, err)
		}
		return nil, domain.ErrVerificationExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("could not compare verification code: %w", err)
		}
		rec.Attempts++
		if rec.Attempts >= domain.VerificationMaxAttempts {
			r.log.Warnf("Verification: record %s locked after %d failed attempts", id, rec.Attempts)
			if err := r.saveRecords(ctx, removeRecord(records, idx)); err != nil {
				r.log.Errorf("Verification: failed to delete locked record %s: %v", id, err)
			}
			return nil, domain.ErrVerificationLocked
		}
		if err := r.saveRecords(ctx, records); err != nil {
			return nil, err
		}
		r.log.Warnf("Verification: code mismatch for record %s (attempt %d of %d)",
			id, rec.Attempts, domain.VerificationMaxAttempts)
		return nil, domain.ErrVerificationMismatch
	}

	// Repeated successful checks stay successful.
	if !rec.IsVerified() {
		now := r.now()
		rec.VerifiedAt = &now
		if err := r.saveRecords(ctx, records); err != nil {
			return nil, err
		}
		r.log.Infof("Verification: record %s verified for %s", rec.ID, rec.Email)
	}

	out := *rec
	return &out, nil
}

func (r *blobVerificationRepository) Consume(ctx context.Context, id string) (*domain.VerificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfRecord(records, id)
	if idx < 0 {
		return nil, domain.ErrVerificationNotFound
	}
	rec := &records[idx]

	if rec.IsConsumed() {
		return nil, domain.ErrVerificationConsumed
	}
	if rec.IsExpired(r.now()) {
		if err := r.saveRecords(ctx, removeRecord(records, idx)); err != nil {
			r.log.Errorf("Verification: failed to delete expired record %s: %v", id, err)
		}
		return nil, domain.ErrVerificationExpired
	}
	if !rec.IsVerified() {
		return nil, domain.ErrVerificationUnverified
	}

	now := r.now()
	rec.ConsumedAt = &now
	if err := r.saveRecords(ctx, records); err != nil {
		return nil, err
	}

	r.log.Infof("Verification: record %s consumed", rec.ID)
	out := *rec
	return &out, nil
}

func (r *blobVerificationRepository) EnsureValid(ctx context.Context, id string) (*domain.VerificationRecord, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOfRecord(records, id)
	if idx < 0 {
		return nil, domain.ErrVerificationNotFound
	}
	rec := records[idx]

	switch {
	case rec.IsConsumed():
		return nil, domain.ErrVerificationConsumed
	case rec.IsExpired(r.now()):
		return nil, domain.ErrVerificationExpired
	case !rec.IsVerified():
		return nil, domain.ErrVerificationUnverified
	}
	return &rec, nil
}

func indexOfRecord(records []domain.VerificationRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func removeRecord(records []domain.VerificationRecord, idx int) []domain.VerificationRecord {
	return append(records[:idx], records[idx+1:]...)
}
