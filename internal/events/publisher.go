// Package events publishes chat-log notifications to RabbitMQ so downstream
// consumers (analytics, moderation) can follow conversations without reading
// the database.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

// ChatLogged is the message body published after a chat log is stored.
type ChatLogged struct {
	ID          uint      `json:"id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Intent      string    `json:"intent"`
	Language    string    `json:"language"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewChatLogged converts a stored log into its event form.
func NewChatLogged(l domain.ChatLog) ChatLogged {
	return ChatLogged{
		ID:          l.ID,
		UserMessage: l.UserMessage,
		BotResponse: l.BotResponse,
		Intent:      l.Intent,
		Language:    l.Language,
		Timestamp:   l.Timestamp,
	}
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends ChatLogged events to a durable queue. amqp channels are
// not safe for concurrent publishing, so sends are serialized.
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    channel
	queue string
}

// NewPublisher dials url and declares queue together with its ".retry" and
// ".dlq" companions. Rejected messages dead-letter into the DLQ; the retry
// queue dead-letters back into the main queue once its messages expire.
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := declareQueues(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func declareQueues(ch *amqp.Channel, queue string) error {
	retryQ := queue + ".retry"
	dlqQ := queue + ".dlq"

	if _, err := ch.QueueDeclare(dlqQ, true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(retryQ, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlqQ,
	})
	return err
}

// Queue returns the main queue name.
func (p *Publisher) Queue() string { return p.queue }

// PublishChatLogged publishes l as a persistent JSON message on the default
// exchange. The send is bounded to five seconds.
func (p *Publisher) PublishChatLogged(ctx context.Context, l domain.ChatLog) error {
	body, err := json.Marshal(NewChatLogged(l))
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         "chat.logged",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
