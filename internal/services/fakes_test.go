package services

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
)

// fakeRepo records calls; it is safe for the background chat-log goroutine.
type fakeRepo struct {
	mu sync.Mutex

	schemes  []domain.Scheme
	queryErr error
	filters  []repo.SchemeFilter

	getScheme *domain.Scheme
	getErr    error

	created   []domain.Scheme
	createErr error

	seeded  int
	seedErr error

	statsCount int64
	statsMax   uint

	logs      []domain.ChatLog
	logCtxErr []error
	logErr    error
}

func (f *fakeRepo) QuerySchemes(_ context.Context, _ *gorm.DB, flt repo.SchemeFilter) ([]domain.Scheme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, flt)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return append([]domain.Scheme(nil), f.schemes...), nil
}

func (f *fakeRepo) GetScheme(_ context.Context, _ *gorm.DB, _ uint) (*domain.Scheme, error) {
	return f.getScheme, f.getErr
}

func (f *fakeRepo) CreateScheme(_ context.Context, _ *gorm.DB, s *domain.Scheme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeRepo) SeedSchemesIfEmpty(_ context.Context, _ *gorm.DB, list []domain.Scheme) (int, error) {
	if f.seedErr != nil {
		return 0, f.seedErr
	}
	if f.seeded > 0 {
		return 0, nil
	}
	f.seeded = len(list)
	return len(list), nil
}

func (f *fakeRepo) SchemesStats(_ context.Context, _ *gorm.DB) (int64, uint, error) {
	return f.statsCount, f.statsMax, nil
}

func (f *fakeRepo) AppendChatLog(ctx context.Context, _ *gorm.DB, l *domain.ChatLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCtxErr = append(f.logCtxErr, ctx.Err())
	if f.logErr != nil {
		return f.logErr
	}
	l.ID = uint(len(f.logs) + 1)
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeRepo) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filters)
}

type fakePublisher struct {
	mu  sync.Mutex
	got []domain.ChatLog
	err error
}

func (p *fakePublisher) PublishChatLogged(_ context.Context, l domain.ChatLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, l)
	return nil
}

func agri(n int) []domain.Scheme {
	out := make([]domain.Scheme, n)
	for i := range out {
		out[i] = domain.Scheme{ID: uint(i + 1), Name: "Agri scheme", Category: "Agriculture & Farmers"}
	}
	return out
}
