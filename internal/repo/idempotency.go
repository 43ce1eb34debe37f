package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

// ErrDuplicate indicates that an unexpired idempotency record already exists
// for the (client_id, key) pair.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the unexpired record for (clientID, key) or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, clientID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("client_id = ? AND idem_key = ? AND expires_at > ?", clientID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ClaimIdempotency records (clientID, key) with the request fingerprint hash
// for ttl. It returns ErrDuplicate when a live record exists; an expired one
// is replaced.
func ClaimIdempotency(ctx context.Context, db *gorm.DB, clientID, key, hash string, ttl time.Duration, now time.Time) (*domain.Idempotency, error) {
	rec := &domain.Idempotency{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Key:         key,
		RequestHash: hash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("client_id = ? AND idem_key = ? AND expires_at <= ?", clientID, key, now).
			Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records that expired at or before now.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation recognises duplicate-key errors across drivers; the pure
// Go SQLite driver reports them as plain text.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key") ||
		strings.Contains(low, "duplicate entry")
}

// ReleaseIdempotency drops the record for (clientID, key) so a retry after a
// failed request is processed afresh.
func ReleaseIdempotency(ctx context.Context, db *gorm.DB, clientID, key string) error {
	return db.WithContext(ctx).
		Where("client_id = ? AND idem_key = ?", clientID, key).
		Delete(&domain.Idempotency{}).Error
}
