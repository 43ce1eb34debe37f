package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
)

// IdempotencyService tracks Idempotency-Key claims on POST /chat per client.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration

	now func() time.Time
}

// NewIdempotencyService returns a service whose claims live for ttl.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyService{DB: db, TTL: ttl, now: time.Now}
}

func (s *IdempotencyService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// Claim records the key with the request fingerprint hash. replay is true
// when an earlier request with the same fingerprint already holds a live
// claim; a live claim for a different fingerprint yields
// ErrIdempotencyKeyReused.
func (s *IdempotencyService) Claim(ctx context.Context, clientID, key, hash string) (replay bool, err error) {
	now := s.clock()
	_, err = repo.ClaimIdempotency(ctx, s.DB, clientID, key, hash, s.TTL, now)
	if !errors.Is(err, repo.ErrDuplicate) {
		return false, err
	}

	rec, err := repo.GetIdempotency(ctx, s.DB, clientID, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		// Released or expired since the insert failed; one more attempt.
		_, err = repo.ClaimIdempotency(ctx, s.DB, clientID, key, hash, s.TTL, now)
		if errors.Is(err, repo.ErrDuplicate) {
			return false, ErrIdempotencyKeyReused
		}
		return false, err
	}
	if err != nil {
		return false, err
	}
	if !rec.Matches(hash) {
		return false, ErrIdempotencyKeyReused
	}
	return true, nil
}

// Release forgets the key after the request it guarded failed.
func (s *IdempotencyService) Release(ctx context.Context, clientID, key string) error {
	return repo.ReleaseIdempotency(ctx, s.DB, clientID, key)
}

// PurgeExpired deletes claims past their TTL.
func (s *IdempotencyService) PurgeExpired(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, s.clock())
}
