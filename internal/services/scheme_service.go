package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/cache"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
)

const listKeyPrefix = "schemes:list:"

// ListQuery holds the optional filters of a catalogue listing.
type ListQuery struct {
	Category string
	State    string
	Source   string
	Search   string
}

// SchemeService serves the scheme catalogue. When Cache is set, listings are
// cached per filter for CacheTTL and invalidated on every create.
type SchemeService struct {
	DB   *gorm.DB
	Repo SchemeRepo

	// StateAlwaysInclude is passed through to the store's state filter.
	StateAlwaysInclude []string

	Cache    cache.Client
	CacheTTL time.Duration
}

// NewSchemeService returns a SchemeService without a cache.
func NewSchemeService(db *gorm.DB, r SchemeRepo) *SchemeService {
	return &SchemeService{DB: db, Repo: r, CacheTTL: 5 * time.Minute}
}

// List returns the schemes matching q in store order.
func (s *SchemeService) List(ctx context.Context, q ListQuery) ([]domain.Scheme, error) {
	tr := otel.Tracer("services/SchemeService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.category", q.Category),
			attribute.String("filter.state", q.State),
			attribute.String("filter.source", q.Source),
		),
	)
	defer span.End()

	key := listKey(q)
	if out, ok := s.cached(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return out, nil
	}

	out, err := s.Repo.QuerySchemes(ctx, s.DB, repo.SchemeFilter{
		Category:           q.Category,
		State:              q.State,
		Source:             q.Source,
		Search:             q.Search,
		StateAlwaysInclude: s.StateAlwaysInclude,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	if out == nil {
		out = []domain.Scheme{}
	}
	s.store(ctx, key, out)
	return out, nil
}

// Get returns the scheme with id or ErrSchemeNotFound.
func (s *SchemeService) Get(ctx context.Context, id uint) (*domain.Scheme, error) {
	tr := otel.Tracer("services/SchemeService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.Int64("scheme.id", int64(id))))
	defer span.End()

	sc, err := s.Repo.GetScheme(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSchemeNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sc, nil
}

// Create validates and stores sc, then drops cached listings.
func (s *SchemeService) Create(ctx context.Context, sc *domain.Scheme) error {
	tr := otel.Tracer("services/SchemeService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheme, err)
	}
	if err := s.Repo.CreateScheme(ctx, s.DB, sc); err != nil {
		span.RecordError(err)
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Seed inserts list when the catalogue is empty and returns how many
// schemes were written.
func (s *SchemeService) Seed(ctx context.Context, list []domain.Scheme) (int, error) {
	n, err := s.Repo.SeedSchemesIfEmpty(ctx, s.DB, list)
	if err != nil {
		return 0, fmt.Errorf("seed schemes: %w", err)
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

// Stats returns the catalogue size and highest id, used for ETags.
func (s *SchemeService) Stats(ctx context.Context) (int64, uint, error) {
	return s.Repo.SchemesStats(ctx, s.DB)
}

func (s *SchemeService) cached(ctx context.Context, key string) ([]domain.Scheme, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, err := s.Cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		schemeCache.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		schemeCache.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("scheme cache read failed")
		return nil, false
	}
	var out []domain.Scheme
	if err := json.Unmarshal(raw, &out); err != nil {
		schemeCache.WithLabelValues("error").Inc()
		_ = s.Cache.Delete(ctx, key)
		return nil, false
	}
	schemeCache.WithLabelValues("hit").Inc()
	return out, true
}

func (s *SchemeService) store(ctx context.Context, key string, list []domain.Scheme) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, raw, s.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("scheme cache write failed")
	}
}

func (s *SchemeService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeleteByPrefix(ctx, listKeyPrefix); err != nil {
		log.Warn().Err(err).Msg("scheme cache invalidation failed")
	}
}

func listKey(q ListQuery) string {
	norm := func(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
	return listKeyPrefix + cache.Key(norm(q.Category), norm(q.State), norm(q.Source), norm(q.Search))
}
