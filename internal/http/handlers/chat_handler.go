package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/http/middleware"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
)

// SchemeService is the catalogue contract used by the handlers.
type SchemeService interface {
	List(ctx context.Context, q services.ListQuery) ([]domain.Scheme, error)
	Get(ctx context.Context, id uint) (*domain.Scheme, error)
	Create(ctx context.Context, s *domain.Scheme) error
	Stats(ctx context.Context) (count int64, maxID uint, err error)
}

// ChatService answers one chat message.
type ChatService interface {
	Respond(ctx context.Context, req services.ChatRequest) (services.Reply, error)
}

// IdempotencyStore claims Idempotency-Key values on POST /chat. Claim
// returns services.ErrIdempotencyKeyReused when the key is live for a
// different request fingerprint.
type IdempotencyStore interface {
	Claim(ctx context.Context, clientID, key, hash string) (replay bool, err error)
	Release(ctx context.Context, clientID, key string) error
}

// Handlers groups the API endpoints.
type Handlers struct {
	schemes SchemeService
	chat    ChatService
	idem    IdempotencyStore
}

// New wires the handlers. idem may be nil, which disables key claiming.
func New(schemes SchemeService, chat ChatService, idem IdempotencyStore) *Handlers {
	return &Handlers{schemes: schemes, chat: chat, idem: idem}
}

// HeaderIdempotencyReplayed marks a response to a repeated Idempotency-Key.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// ChatRequest is the body of POST /chat. Message may be empty but must be
// present and a string.
type ChatRequest struct {
	Message  *string `json:"message" binding:"required" example:"Show me schemes for farmers in Karnataka"`
	Language string  `json:"language,omitempty" example:"kn"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Response           string          `json:"response" example:"I found 4 schemes related to Agriculture & Farmers. Here are the details:"`
	Intent             string          `json:"intent" enums:"greeting,scheme_query,unknown" example:"scheme_query"`
	Schemes            []domain.Scheme `json:"schemes,omitempty"`
	SuggestedQuestions []string        `json:"suggestedQuestions,omitempty"`
}

func toChatResponse(r services.Reply) ChatResponse {
	resp := ChatResponse{
		Response:           r.Text(),
		Intent:             r.Intent().String(),
		SuggestedQuestions: r.Suggestions(),
	}
	if sr, ok := r.(*services.SchemeReply); ok {
		resp.Schemes = sr.Schemes
	}
	return resp
}

// normalizeLanguage canonicalises BCP 47 codes ("KN" becomes "kn"). Anything
// unparseable is recorded as sent.
func normalizeLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.DefaultLanguage
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	return tag.String()
}

// requestHash fingerprints a chat request for idempotency checks.
func requestHash(message, lang string) string {
	sum := sha256.Sum256([]byte(message + "\x00" + lang))
	return hex.EncodeToString(sum[:])
}

// bindMessage turns a binding error into the message clients see.
func bindMessage(err error) string {
	var (
		typeErr *json.UnmarshalTypeError
		vErrs   validator.ValidationErrors
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &vErrs) && len(vErrs) > 0:
		return fmt.Sprintf("%s is required", lowerFirst(vErrs[0].Field()))
	default:
		return "invalid JSON body"
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// Chat godoc
// @ID          chat
// @Summary     Ask the scheme assistant
// @Description Classifies the message and answers with a greeting, up to three matching schemes, or a fallback with example questions.
// @Description A repeated Idempotency-Key from the same client with the same body is answered again but not logged twice.
// @Description Reusing a live key for a different body is refused with 422.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                false  "Client retry key"  example(2f1c6a10-retry-1)
// @Param       body             body    handlers.ChatRequest  true   "Chat message"
//
// @Success     200  {object}  handlers.ChatResponse
// @Header      200  {string}  Idempotency-Replayed  "true when the same key and body were seen before"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid body or message too long"
// @Failure     422  {object}  handlers.ErrorResponse  "Idempotency-Key reused for a different request"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	ctx := c.Request.Context()
	clientID := middleware.ClientID(c)
	key, hasKey := middleware.GetIdempotencyKey(c)
	lang := normalizeLanguage(req.Language)
	replay, claimed := false, false

	if hasKey && h.idem != nil {
		dup, err := h.idem.Claim(ctx, clientID, key, requestHash(*req.Message, lang))
		switch {
		case errors.Is(err, services.ErrIdempotencyKeyReused):
			fail(c, http.StatusUnprocessableEntity, ErrCodeIdempotencyKeyReused, "Idempotency-Key was already used for a different request")
			return
		case err != nil:
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency claim failed")
		case dup:
			replay = true
			middleware.MarkReplay(c)
		default:
			claimed = true
		}
	}

	reply, err := h.chat.Respond(ctx, services.ChatRequest{
		Message:  *req.Message,
		Language: lang,
		SkipLog:  replay,
	})
	if err != nil {
		if claimed {
			if rerr := h.idem.Release(context.WithoutCancel(ctx), clientID, key); rerr != nil {
				middleware.LoggerFrom(c).Warn().Err(rerr).Msg("idempotency release failed")
			}
		}
		if errors.Is(err, services.ErrMessageTooLong) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is too long")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeChatFailed, msgInternal, err)
		return
	}

	if replay {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusOK, toChatResponse(reply))
}
