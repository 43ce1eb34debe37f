package services

import (
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/intent"
)

// Reply is the composed answer to one chat message. It is one of
// *GreetingReply, *SchemeReply or *FallbackReply; each carries only the
// fields meaningful for its intent.
type Reply interface {
	Intent() intent.Intent
	Text() string
	Suggestions() []string
	isReply()
}

// GreetingReply answers a greeting. No store lookup is made.
type GreetingReply struct {
	Message   string
	Suggested []string
}

func (r *GreetingReply) Intent() intent.Intent { return intent.Greeting }
func (r *GreetingReply) Text() string { return r.Message }
func (r *GreetingReply) Suggestions() []string { return r.Suggested }
func (*GreetingReply) isReply() {}

// SchemeReply answers a scheme query. Schemes holds at most the configured
// inline limit; Total is the untruncated match count.
type SchemeReply struct {
	Message    string
	Descriptor string
	Filter     intent.Result
	Total      int
	Schemes    []domain.Scheme
	Suggested  []string
}

func (r *SchemeReply) Intent() intent.Intent { return intent.SchemeQuery }
func (r *SchemeReply) Text() string { return r.Message }
func (r *SchemeReply) Suggestions() []string { return r.Suggested }
func (*SchemeReply) isReply() {}

// Truncated reports whether more schemes matched than were returned inline.
func (r *SchemeReply) Truncated() bool { return r.Total > len(r.Schemes) }

// FallbackReply answers a message the classifier could not place.
type FallbackReply struct {
	Message   string
	Suggested []string
}

func (r *FallbackReply) Intent() intent.Intent { return intent.Unknown }
func (r *FallbackReply) Text() string { return r.Message }
func (r *FallbackReply) Suggestions() []string { return r.Suggested }
func (*FallbackReply) isReply() {}
