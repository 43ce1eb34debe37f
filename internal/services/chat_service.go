package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/intent"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
)

const (
	greetingText = "Namaste! I am Bharat Scheme Bot. I can help you find government schemes for farmers, students, women, and more. How can I assist you today?"
	fallbackText = "I'm not sure which schemes you are looking for. You can ask me about schemes for Farmers, Students, Women, Health, or Housing."

	suggestApplication = "Show application process"
	suggestDocuments   = "Required documents"

	// maxInline is the most schemes a reply ever carries inline.
	maxInline = 3
)

var (
	greetingSuggestions = []string{"Schemes for farmers", "Scholarships for students", "Health insurance schemes"}
	fallbackSuggestions = []string{"Schemes for farmers", "Student scholarships", "Women welfare"}
)

// ChatRequest is one inbound chat message.
type ChatRequest struct {
	Message  string
	Language string
	// SkipLog suppresses the chat-log append, used when answering an
	// idempotent replay of an already logged request.
	SkipLog bool
}

// ChatService composes replies to chat messages: it classifies the text,
// queries the catalogue for scheme intents and records every exchange.
type ChatService struct {
	DB         *gorm.DB
	Repo       SchemeRepo
	Classifier *intent.Classifier

	// StateAlwaysInclude is passed through to the store's state filter.
	StateAlwaysInclude []string
	// MaxInline caps the schemes returned with a reply. Values outside
	// 1..maxInline fall back to maxInline.
	MaxInline int
	// MaxMessageRunes rejects longer messages when > 0.
	MaxMessageRunes int
	// LogTimeout bounds each background chat-log append.
	LogTimeout time.Duration

	// Events, when set, receives every stored chat log.
	Events ChatLogPublisher

	wg sync.WaitGroup
}

// NewChatService returns a ChatService with the default classifier and
// limits.
func NewChatService(db *gorm.DB, r SchemeRepo) *ChatService {
	return &ChatService{
		DB:              db,
		Repo:            r,
		Classifier:      intent.New(),
		MaxInline:       maxInline,
		MaxMessageRunes: 2000,
		LogTimeout:      5 * time.Second,
	}
}

// Respond classifies req.Message and composes the reply. A scheme intent
// makes exactly one store query; its failure is returned. The chat log is
// written in the background and its failure never reaches the caller.
func (s *ChatService) Respond(ctx context.Context, req ChatRequest) (Reply, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Respond",
		trace.WithAttributes(attribute.Int("message.runes", utf8.RuneCountInString(req.Message))),
	)
	defer span.End()

	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(req.Message) > s.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	res := s.classifier().Classify(req.Message)
	intentsTotal.WithLabelValues(res.Intent.String()).Inc()
	span.SetAttributes(
		attribute.String("chat.intent", res.Intent.String()),
		attribute.String("chat.category", res.Category),
	)

	var reply Reply
	switch res.Intent {
	case intent.Greeting:
		reply = &GreetingReply{Message: greetingText, Suggested: clone(greetingSuggestions)}
	case intent.SchemeQuery:
		r, err := s.schemeReply(ctx, res)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		reply = r
	default:
		reply = &FallbackReply{Message: fallbackText, Suggested: clone(fallbackSuggestions)}
	}

	if !req.SkipLog {
		s.appendLog(ctx, domain.ChatLog{
			UserMessage: req.Message,
			BotResponse: reply.Text(),
			Intent:      reply.Intent().String(),
			Language:    lang,
		})
	}
	return reply, nil
}

func (s *ChatService) schemeReply(ctx context.Context, res intent.Result) (*SchemeReply, error) {
	all, err := s.Repo.QuerySchemes(ctx, s.DB, repo.SchemeFilter{
		Category:           res.Category,
		State:              res.State,
		Source:             res.Source,
		StateAlwaysInclude: s.StateAlwaysInclude,
	})
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}

	desc := Descriptor(res)
	out := &SchemeReply{Descriptor: desc, Filter: res, Total: len(all)}

	if len(all) == 0 {
		out.Message = fmt.Sprintf("I couldn't find any schemes related to %s. You can ask me about schemes for Farmers, Students, Women, Health, or Housing.", desc)
		out.Suggested = clone(fallbackSuggestions)
		return out, nil
	}

	limit := s.MaxInline
	if limit <= 0 || limit > maxInline {
		limit = maxInline
	}
	if len(all) > limit {
		out.Schemes = all[:limit:limit]
	} else {
		out.Schemes = all
	}

	out.Message = fmt.Sprintf("I found %d schemes related to %s. Here are the details:", len(all), desc)
	out.Suggested = []string{suggestApplication, suggestDocuments}
	if out.Truncated() {
		out.Suggested = append(out.Suggested, fmt.Sprintf("Show all %d %s schemes", len(all), desc))
	}
	return out, nil
}

// Descriptor names a classification for reply text: source, state and the
// category (or "government") joined by spaces, e.g. "Karnataka Agriculture &
// Farmers" or "Central government".
func Descriptor(res intent.Result) string {
	parts := make([]string, 0, 3)
	if res.Source != "" {
		parts = append(parts, res.Source)
	}
	if res.State != "" {
		parts = append(parts, res.State)
	}
	if res.Category != "" {
		parts = append(parts, res.Category)
	} else {
		parts = append(parts, "government")
	}
	return strings.Join(parts, " ")
}

// appendLog stores l without blocking the caller. The write is detached from
// request cancellation and bounded by LogTimeout.
func (s *ChatService) appendLog(ctx context.Context, l domain.ChatLog) {
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timeout := s.LogTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		lctx, cancel := context.WithTimeout(bg, timeout)
		defer cancel()

		if err := s.Repo.AppendChatLog(lctx, s.DB, &l); err != nil {
			chatLogFailures.WithLabelValues("append").Inc()
			log.Warn().Err(err).Str("intent", l.Intent).Msg("chat log append failed")
			return
		}
		if s.Events == nil {
			return
		}
		if err := s.Events.PublishChatLogged(lctx, l); err != nil {
			chatLogFailures.WithLabelValues("publish").Inc()
			log.Warn().Err(err).Uint("chat_log_id", l.ID).Msg("chat log publish failed")
		}
	}()
}

// Wait blocks until all background chat-log writes have finished.
func (s *ChatService) Wait() {
	s.wg.Wait()
}

func (s *ChatService) classifier() *intent.Classifier {
	if s.Classifier == nil {
		return intent.New()
	}
	return s.Classifier
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
