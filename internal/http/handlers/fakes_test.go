package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/http/middleware"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/intent"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
)

type fakeSchemes struct {
	list      []domain.Scheme
	listErr   error
	statsErr  error
	getErr    error
	createErr error

	lastQuery services.ListQuery
	listCalls int
	created   *domain.Scheme
}

func (f *fakeSchemes) List(_ context.Context, q services.ListQuery) ([]domain.Scheme, error) {
	f.listCalls++
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeSchemes) Get(_ context.Context, id uint) (*domain.Scheme, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.list {
		if f.list[i].ID == id {
			s := f.list[i]
			return &s, nil
		}
	}
	return nil, services.ErrSchemeNotFound
}

func (f *fakeSchemes) Create(_ context.Context, s *domain.Scheme) error {
	if f.createErr != nil {
		return f.createErr
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidScheme, err)
	}
	s.ID = uint(len(f.list) + 1)
	f.list = append(f.list, *s)
	f.created = s
	return nil
}

func (f *fakeSchemes) Stats(context.Context) (int64, uint, error) {
	if f.statsErr != nil {
		return 0, 0, f.statsErr
	}
	var maxID uint
	for _, s := range f.list {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return int64(len(f.list)), maxID, nil
}

type fakeChat struct {
	mu    sync.Mutex
	reply services.Reply
	err   error
	reqs  []services.ChatRequest
}

func (f *fakeChat) Respond(_ context.Context, req services.ChatRequest) (services.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &services.FallbackReply{Message: "fallback", Suggested: []string{"Women welfare"}}, nil
}

func (f *fakeChat) last() services.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type fakeIdem struct {
	claims   map[string]string
	claimErr error
	released []string
}

func (f *fakeIdem) Claim(_ context.Context, clientID, key, hash string) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.claims == nil {
		f.claims = map[string]string{}
	}
	k := clientID + "|" + key
	if prev, ok := f.claims[k]; ok {
		if prev != hash {
			return false, services.ErrIdempotencyKeyReused
		}
		return true, nil
	}
	f.claims[k] = hash
	return false, nil
}

func (f *fakeIdem) Release(_ context.Context, clientID, key string) error {
	k := clientID + "|" + key
	delete(f.claims, k)
	f.released = append(f.released, k)
	return nil
}

func scheme(id uint, name string) domain.Scheme {
	return domain.Scheme{ID: id, Name: name, Category: "Agriculture & Farmers", State: "Pan India", Source: "Central"}
}

func schemeReply(n int) *services.SchemeReply {
	r := &services.SchemeReply{
		Message:   "I found some schemes",
		Filter:    intent.Result{Intent: intent.SchemeQuery, Category: "Agriculture & Farmers"},
		Total:     n,
		Suggested: []string{"Show application process", "Required documents"},
	}
	for i := 1; i <= n && i <= 3; i++ {
		r.Schemes = append(r.Schemes, scheme(uint(i), "s"))
	}
	return r
}

// testRouter mounts the handlers behind the request-id and idempotency
// middleware, mirroring the production chain.
func testRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}))
	r.GET("/schemes", h.ListSchemes)
	r.GET("/schemes/:id", h.GetScheme)
	r.POST("/schemes", h.CreateScheme)
	r.POST("/chat", h.Chat)
	return r
}
