package domain

import "time"

// Idempotency records that a client already submitted a chat message under a
// given Idempotency-Key. Rows are unique per (client_id, key) and expire
// after the configured TTL. RequestHash fingerprints the original body; a
// retry with the same fingerprint is answered again but not logged a second
// time, and a different body under the same key is refused.
type Idempotency struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	ClientID    string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_client_key,priority:1"`
	Key         string    `gorm:"column:idem_key;type:varchar(200);not null;uniqueIndex:ux_client_key,priority:2"`
	RequestHash string    `gorm:"type:varchar(64);not null;default:''"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record is no longer valid at now.
func (i Idempotency) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Matches reports whether hash fingerprints the request that claimed the key.
func (i Idempotency) Matches(hash string) bool {
	return i.RequestHash == hash
}
