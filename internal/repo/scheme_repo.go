package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// SchemeFilter narrows QuerySchemes. Empty fields are ignored; the remaining
// dimensions are AND-combined.
type SchemeFilter struct {
	Category string
	State    string
	Source   string
	Search   string

	// StateAlwaysInclude lists jurisdictions (matched case-insensitively
	// and exactly) that a State filter never excludes.
	StateAlwaysInclude []string
}

// IsZero reports whether the filter selects every scheme.
func (f SchemeFilter) IsZero() bool {
	return strings.TrimSpace(f.Category) == "" &&
		strings.TrimSpace(f.State) == "" &&
		strings.TrimSpace(f.Source) == "" &&
		strings.TrimSpace(f.Search) == ""
}

const likeEscape = "!"

// QuerySchemes returns schemes matching f in insertion order (id ASC).
//
// Category, Source and State match as case-insensitive substrings. A State
// filter additionally admits every scheme whose state equals one of
// f.StateAlwaysInclude. Search matches a substring of name, description or
// benefits, or an exact keyword.
func QuerySchemes(ctx context.Context, db *gorm.DB, f SchemeFilter) ([]domain.Scheme, error) {
	q := db.WithContext(ctx).Model(&domain.Scheme{})

	if v := strings.TrimSpace(f.Category); v != "" {
		q = q.Where(ilike("category"), containsPattern(v))
	}

	if v := strings.TrimSpace(f.State); v != "" {
		if always := lowerAll(f.StateAlwaysInclude); len(always) > 0 {
			q = q.Where("("+ilike("state")+" OR LOWER(state) IN ?)", containsPattern(v), always)
		} else {
			q = q.Where(ilike("state"), containsPattern(v))
		}
	}

	if v := strings.TrimSpace(f.Source); v != "" {
		q = q.Where(ilike("source"), containsPattern(v))
	}

	if v := strings.TrimSpace(f.Search); v != "" {
		p := containsPattern(v)
		cond := "(" + ilike("name") + " OR " + ilike("description") + " OR " + ilike("benefits")
		args := []any{p, p, p}
		for _, kp := range keywordPatterns(v) {
			cond += " OR " + ilike(jsonText(db, "keywords"))
			args = append(args, kp)
		}
		q = q.Where(cond+")", args...)
	}

	var out []domain.Scheme
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetScheme fetches one scheme by id, or ErrNotFound.
func GetScheme(ctx context.Context, db *gorm.DB, id uint) (*domain.Scheme, error) {
	var s domain.Scheme
	err := db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateScheme inserts s after applying defaults; the store assigns s.ID.
func CreateScheme(ctx context.Context, db *gorm.DB, s *domain.Scheme) error {
	s.ID = 0
	s.ApplyDefaults()
	return db.WithContext(ctx).Create(s).Error
}

// CountSchemes returns the number of stored schemes.
func CountSchemes(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Scheme{}).Count(&n).Error
	return n, err
}

// IsEmpty reports whether the scheme table has no rows.
func IsEmpty(ctx context.Context, db *gorm.DB) (bool, error) {
	n, err := CountSchemes(ctx, db)
	return n == 0, err
}

// SeedSchemesIfEmpty inserts list only when the table is empty and returns
// the number of rows written. The emptiness check and the insert run in one
// transaction so concurrent starters cannot both seed.
func SeedSchemesIfEmpty(ctx context.Context, db *gorm.DB, list []domain.Scheme) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}
	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForSeed(tx); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&domain.Scheme{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		rows := make([]domain.Scheme, len(list))
		for i := range list {
			rows[i] = list[i]
			rows[i].ID = 0
			rows[i].ApplyDefaults()
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
		inserted = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// SchemesStats returns the row count and the highest id. Schemes are never
// updated or deleted, so the pair changes whenever the catalogue does.
func SchemesStats(ctx context.Context, db *gorm.DB) (count int64, maxID uint, err error) {
	var row struct {
		Count int64
		MaxID uint
	}
	err = db.WithContext(ctx).
		Model(&domain.Scheme{}).
		Select("COUNT(*) AS count, COALESCE(MAX(id), 0) AS max_id").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.MaxID, nil
}

// lockForSeed serializes concurrent seeders where the dialect needs it.
// SQLite already serializes writers on the database file.
func lockForSeed(tx *gorm.DB) error {
	switch dialect(tx) {
	case DriverPostgres:
		return tx.Exec("LOCK TABLE " + domain.Scheme{}.TableName() + " IN SHARE ROW EXCLUSIVE MODE").Error
	case DriverMySQL:
		var ids []uint
		return tx.Model(&domain.Scheme{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Limit(1).
			Pluck("id", &ids).Error
	}
	return nil
}

// jsonText renders col as text for LIKE matching on the active dialect.
func jsonText(db *gorm.DB, col string) string {
	switch dialect(db) {
	case DriverPostgres:
		return "CAST(" + col + " AS TEXT)"
	case DriverMySQL:
		return "CAST(" + col + " AS CHAR)"
	}
	return col
}

// ilike builds a portable case-insensitive LIKE predicate for expr.
func ilike(expr string) string {
	return "LOWER(" + expr + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

func containsPattern(v string) string {
	return "%" + escapeLike(strings.ToLower(v)) + "%"
}

// keywordPatterns match v as a whole element of a JSON string array. JSON
// columns on Postgres and MySQL are normalised and hold & < > literally,
// while SQLite keeps the \u0026 escapes json.Marshal wrote, so both
// spellings are returned when they differ.
func keywordPatterns(v string) []string {
	v = strings.ToLower(v)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return []string{"%" + escapeLike(`"`+v+`"`) + "%"}
	}
	out := []string{"%" + escapeLike(strings.TrimSuffix(buf.String(), "\n")) + "%"}

	if escaped, err := json.Marshal(v); err == nil {
		if p := "%" + escapeLike(string(escaped)) + "%"; p != out[0] {
			out = append(out, p)
		}
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
