// Package domain defines the persistence models for welfare schemes and chat
// logs. These types are mapped with GORM and shared by the repository,
// service and HTTP layers.
package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	// DefaultSource is the issuing authority assumed when a scheme omits one.
	DefaultSource = "Central"
	// DefaultState is the jurisdiction assumed when a scheme omits one.
	DefaultState = "Pan India"
	// DefaultLanguage is recorded on chat logs when the client sends none.
	DefaultLanguage = "en"
)

// SchemeTranslation carries localized overrides for a scheme's display
// fields. Every field is optional; empty fields fall back to the base text.
type SchemeTranslation struct {
	Name               string `json:"name,omitempty"               yaml:"name,omitempty"`
	Description        string `json:"description,omitempty"        yaml:"description,omitempty"`
	Beneficiaries      string `json:"beneficiaries,omitempty"      yaml:"beneficiaries,omitempty"`
	Eligibility        string `json:"eligibility,omitempty"        yaml:"eligibility,omitempty"`
	Benefits           string `json:"benefits,omitempty"           yaml:"benefits,omitempty"`
	Documents          string `json:"documents,omitempty"          yaml:"documents,omitempty"`
	ApplicationProcess string `json:"applicationProcess,omitempty" yaml:"applicationProcess,omitempty"`
}

// Translations maps a locale code (e.g. "hi", "kn") to its overrides.
type Translations map[string]SchemeTranslation

// Scheme is one government welfare programme.
//
// Category, Source and State are free text; callers match them by
// case-insensitive substring, never by equality against a fixed set.
// Keywords and Translations are stored as JSON columns.
type Scheme struct {
	ID                 uint                             `json:"id"                 gorm:"primaryKey;autoIncrement"`
	Name               string                           `json:"name"               gorm:"type:text;not null"`
	Category           string                           `json:"category"           gorm:"type:varchar(128);not null;index"`
	Description        string                           `json:"description"        gorm:"type:text;not null"`
	Beneficiaries      string                           `json:"beneficiaries"      gorm:"type:text;not null"`
	Eligibility        string                           `json:"eligibility"        gorm:"type:text;not null"`
	Benefits           string                           `json:"benefits"           gorm:"type:text;not null"`
	Documents          string                           `json:"documents"          gorm:"type:text;not null"`
	ApplicationProcess string                           `json:"applicationProcess" gorm:"type:text;not null"`
	OfficialLink       string                           `json:"officialLink,omitempty" gorm:"type:text"`
	Source             string                           `json:"source"             gorm:"type:varchar(128);not null;default:'Central'"`
	State              string                           `json:"state"              gorm:"type:varchar(128);not null;default:'Pan India';index"`
	Keywords           datatypes.JSONSlice[string]      `json:"keywords"`
	Translations       datatypes.JSONType[Translations] `json:"translations"`
}

// TableName returns the database table name for Scheme.
func (Scheme) TableName() string { return "schemes" }

// ApplyDefaults trims text fields and fills the optional ones the store
// would otherwise default.
func (s *Scheme) ApplyDefaults() {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	s.Source = strings.TrimSpace(s.Source)
	s.State = strings.TrimSpace(s.State)
	s.OfficialLink = strings.TrimSpace(s.OfficialLink)
	if s.Source == "" {
		s.Source = DefaultSource
	}
	if s.State == "" {
		s.State = DefaultState
	}
	if s.Keywords == nil {
		s.Keywords = datatypes.JSONSlice[string]{}
	}
	if s.Translations.Data() == nil {
		s.Translations = datatypes.NewJSONType(Translations{})
	}
}

// Validate applies defaults and reports the first missing required field.
func (s *Scheme) Validate() error {
	s.ApplyDefaults()
	required := []struct {
		name, value string
	}{
		{"name", s.Name},
		{"category", s.Category},
		{"description", s.Description},
		{"beneficiaries", s.Beneficiaries},
		{"eligibility", s.Eligibility},
		{"benefits", s.Benefits},
		{"documents", s.Documents},
		{"applicationProcess", s.ApplicationProcess},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

// ChatLog is one append-only record of a conversational exchange.
type ChatLog struct {
	ID          uint      `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserMessage string    `json:"userMessage" gorm:"type:text;not null"`
	BotResponse string    `json:"botResponse" gorm:"type:text;not null"`
	Intent      string    `json:"intent"      gorm:"type:varchar(32);index"`
	Language    string    `json:"language"    gorm:"type:varchar(16);not null;default:'en'"`
	Timestamp   time.Time `json:"timestamp"   gorm:"autoCreateTime;index"`
}

// TableName returns the database table name for ChatLog.
func (ChatLog) TableName() string { return "chat_logs" }
