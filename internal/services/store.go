package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
)

// SchemeRepo is the store contract consumed by the services. The repo
// package's free functions satisfy it through a thin adapter; tests use
// fakes.
type SchemeRepo interface {
	QuerySchemes(ctx context.Context, db *gorm.DB, f repo.SchemeFilter) ([]domain.Scheme, error)
	GetScheme(ctx context.Context, db *gorm.DB, id uint) (*domain.Scheme, error)
	CreateScheme(ctx context.Context, db *gorm.DB, s *domain.Scheme) error
	SeedSchemesIfEmpty(ctx context.Context, db *gorm.DB, list []domain.Scheme) (int, error)
	SchemesStats(ctx context.Context, db *gorm.DB) (count int64, maxID uint, err error)
	AppendChatLog(ctx context.Context, db *gorm.DB, l *domain.ChatLog) error
}

// Store adapts the repo package functions to SchemeRepo.
type Store struct{}

// QuerySchemes proxies repo.QuerySchemes.
func (Store) QuerySchemes(ctx context.Context, db *gorm.DB, f repo.SchemeFilter) ([]domain.Scheme, error) {
	return repo.QuerySchemes(ctx, db, f)
}

// GetScheme proxies repo.GetScheme.
func (Store) GetScheme(ctx context.Context, db *gorm.DB, id uint) (*domain.Scheme, error) {
	return repo.GetScheme(ctx, db, id)
}

// CreateScheme proxies repo.CreateScheme.
func (Store) CreateScheme(ctx context.Context, db *gorm.DB, s *domain.Scheme) error {
	return repo.CreateScheme(ctx, db, s)
}

// SeedSchemesIfEmpty proxies repo.SeedSchemesIfEmpty.
func (Store) SeedSchemesIfEmpty(ctx context.Context, db *gorm.DB, list []domain.Scheme) (int, error) {
	return repo.SeedSchemesIfEmpty(ctx, db, list)
}

// SchemesStats proxies repo.SchemesStats.
func (Store) SchemesStats(ctx context.Context, db *gorm.DB) (int64, uint, error) {
	return repo.SchemesStats(ctx, db)
}

// AppendChatLog proxies repo.AppendChatLog.
func (Store) AppendChatLog(ctx context.Context, db *gorm.DB, l *domain.ChatLog) error {
	return repo.AppendChatLog(ctx, db, l)
}

// ChatLogPublisher announces stored chat logs. *events.Publisher implements
// it.
type ChatLogPublisher interface {
	PublishChatLogged(ctx context.Context, l domain.ChatLog) error
}
