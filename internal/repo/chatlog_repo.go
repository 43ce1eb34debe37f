package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

// AppendChatLog inserts one chat log row. The store assigns ID and Timestamp.
func AppendChatLog(ctx context.Context, db *gorm.DB, l *domain.ChatLog) error {
	l.ID = 0
	if strings.TrimSpace(l.Language) == "" {
		l.Language = domain.DefaultLanguage
	}
	return db.WithContext(ctx).Create(l).Error
}

// RecentChatLogs returns up to limit logs, newest first.
func RecentChatLogs(ctx context.Context, db *gorm.DB, limit int) ([]domain.ChatLog, error) {
	var out []domain.ChatLog
	q := db.WithContext(ctx).Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
