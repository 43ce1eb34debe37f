package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

func fixtureSchemes() []domain.Scheme {
	mk := func(name, category, state, source, desc string, kw ...string) domain.Scheme {
		return domain.Scheme{
			Name:               name,
			Category:           category,
			Description:        desc,
			Beneficiaries:      "b",
			Eligibility:        "e",
			Benefits:           "benefit text",
			Documents:          "Aadhaar",
			ApplicationProcess: "apply",
			State:              state,
			Source:             source,
			Keywords:           datatypes.JSONSlice[string](kw),
		}
	}
	return []domain.Scheme{
		mk("PM Kisan Samman Nidhi", "Agriculture & Farmers", "Pan India", "", "Income support for farmer families.", "kisan", "farmer"),
		mk("Raitha Siri", "Agriculture & Farmers", "Karnataka", "Karnataka", "Support for growers.", "millet"),
		mk("Uzhavar Pathukappu", "Agriculture & Farmers", "Tamil Nadu", "Tamil Nadu", "Welfare for cultivators."),
		mk("National Scholarship Portal", "Education & Students", "Pan India", "", "One-stop scholarship portal.", "scholarship"),
		mk("Vidyasiri", "Education & Students", "Karnataka", "Karnataka", "Hostel and food assistance."),
	}
}

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	n, err := SeedSchemesIfEmpty(context.Background(), db, fixtureSchemes())
	if err != nil || n != 5 {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}
	return db
}

var widening = []string{"Pan India", "Karnataka"}

func assertNames(t *testing.T, got []domain.Scheme, want ...string) {
	t.Helper()
	g := make([]string, 0, len(got))
	for _, s := range got {
		g = append(g, s.Name)
	}
	if len(g) != len(want) {
		t.Fatalf("got %v; want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v; want %v", g, want)
		}
	}
}

func TestQuerySchemes_EmptyFilterReturnsAllInInsertionOrder(t *testing.T) {
	db := seededDB(t)
	got, err := QuerySchemes(context.Background(), db, SchemeFilter{})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "PM Kisan Samman Nidhi", "Raitha Siri", "Uzhavar Pathukappu", "National Scholarship Portal", "Vidyasiri")
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("ids not ascending: %d then %d", got[i-1].ID, got[i].ID)
		}
	}
}

func TestQuerySchemes_CategoryCaseInsensitiveSubstring(t *testing.T) {
	db := seededDB(t)
	got, err := QuerySchemes(context.Background(), db, SchemeFilter{Category: "AGRICULTURE"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "PM Kisan Samman Nidhi", "Raitha Siri", "Uzhavar Pathukappu")
}

func TestQuerySchemes_StateWideningIncludesNationalAndRegional(t *testing.T) {
	db := seededDB(t)

	// Kerala matches nothing directly; Pan India and Karnataka rows still come
	// back and the Tamil Nadu row is excluded.
	got, err := QuerySchemes(context.Background(), db, SchemeFilter{State: "Kerala", StateAlwaysInclude: widening})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "PM Kisan Samman Nidhi", "Raitha Siri", "National Scholarship Portal", "Vidyasiri")

	got, err = QuerySchemes(context.Background(), db, SchemeFilter{State: "Karnataka", StateAlwaysInclude: widening})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "PM Kisan Samman Nidhi", "Raitha Siri", "National Scholarship Portal", "Vidyasiri")

	got, err = QuerySchemes(context.Background(), db, SchemeFilter{State: "tamil", StateAlwaysInclude: widening})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("tamil + widening should return all 5, got %d", len(got))
	}
}

func TestQuerySchemes_StateWithoutWidening(t *testing.T) {
	db := seededDB(t)
	got, err := QuerySchemes(context.Background(), db, SchemeFilter{State: "karnataka"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "Raitha Siri", "Vidyasiri")
}

func TestQuerySchemes_DimensionsAreANDed(t *testing.T) {
	db := seededDB(t)
	got, err := QuerySchemes(context.Background(), db, SchemeFilter{
		Category:           "Agriculture",
		State:              "Kerala",
		StateAlwaysInclude: widening,
	})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "PM Kisan Samman Nidhi", "Raitha Siri")

	got, err = QuerySchemes(context.Background(), db, SchemeFilter{Category: "Education", Source: "central"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "National Scholarship Portal")
}

func TestQuerySchemes_SearchTextAndKeywords(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	got, err := QuerySchemes(ctx, db, SchemeFilter{Search: "INCOME"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "PM Kisan Samman Nidhi")

	// Exact keyword element.
	got, err = QuerySchemes(ctx, db, SchemeFilter{Search: "millet"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "Raitha Siri")

	// A keyword prefix is not a keyword match.
	got, err = QuerySchemes(ctx, db, SchemeFilter{Search: "mill"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got)

	// Name substring.
	got, err = QuerySchemes(ctx, db, SchemeFilter{Search: "siri"})
	if err != nil {
		t.Fatalf("QuerySchemes: %v", err)
	}
	assertNames(t, got, "Raitha Siri", "Vidyasiri")
}

func TestQuerySchemes_WildcardsAreLiteral(t *testing.T) {
	db := seededDB(t)
	for _, term := range []string{"%", "_", "!"} {
		got, err := QuerySchemes(context.Background(), db, SchemeFilter{Search: term})
		if err != nil {
			t.Fatalf("QuerySchemes(%q): %v", term, err)
		}
		if len(got) != 0 {
			t.Fatalf("search %q should match nothing, got %d", term, len(got))
		}
	}
}

func TestQuerySchemes_ErrorWithoutTable(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrator().DropTable(&domain.Scheme{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := QuerySchemes(context.Background(), db, SchemeFilter{}); err == nil {
		t.Fatalf("expected error without schemes table")
	}
}

func TestGetScheme_FoundAndNotFound(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	s, err := GetScheme(ctx, db, 2)
	if err != nil {
		t.Fatalf("GetScheme: %v", err)
	}
	if s.Name != "Raitha Siri" || s.Source != "Karnataka" {
		t.Fatalf("unexpected scheme: %+v", s)
	}

	if _, err := GetScheme(ctx, db, 999999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateScheme_AppliesDefaults(t *testing.T) {
	db := newTestDB(t)
	s := &domain.Scheme{
		ID:                 42,
		Name:               "Ujjwala",
		Category:           "Housing & Urban",
		Description:        "LPG connections",
		Beneficiaries:      "BPL households",
		Eligibility:        "e",
		Benefits:           "free connection",
		Documents:          "Aadhaar",
		ApplicationProcess: "apply at distributor",
	}
	if err := CreateScheme(context.Background(), db, s); err != nil {
		t.Fatalf("CreateScheme: %v", err)
	}
	if s.ID != 1 {
		t.Fatalf("store should assign the id, got %d", s.ID)
	}
	got, err := GetScheme(context.Background(), db, s.ID)
	if err != nil {
		t.Fatalf("GetScheme: %v", err)
	}
	if got.Source != domain.DefaultSource || got.State != domain.DefaultState {
		t.Fatalf("defaults not persisted: %+v", got)
	}
}

func TestSeedSchemesIfEmpty_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	empty, err := IsEmpty(ctx, db)
	if err != nil || !empty {
		t.Fatalf("IsEmpty before seed = %v, %v", empty, err)
	}

	n, err := SeedSchemesIfEmpty(ctx, db, fixtureSchemes())
	if err != nil || n != 5 {
		t.Fatalf("first seed: n=%d err=%v", n, err)
	}
	n, err = SeedSchemesIfEmpty(ctx, db, fixtureSchemes())
	if err != nil || n != 0 {
		t.Fatalf("second seed: n=%d err=%v", n, err)
	}

	count, err := CountSchemes(ctx, db)
	if err != nil || count != 5 {
		t.Fatalf("count after two seeds = %d, %v", count, err)
	}
	empty, err = IsEmpty(ctx, db)
	if err != nil || empty {
		t.Fatalf("IsEmpty after seed = %v, %v", empty, err)
	}
}

func TestSeedSchemesIfEmpty_SkipsWhenStoreHasRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	one := fixtureSchemes()[0]
	if err := CreateScheme(ctx, db, &one); err != nil {
		t.Fatalf("CreateScheme: %v", err)
	}
	n, err := SeedSchemesIfEmpty(ctx, db, fixtureSchemes())
	if err != nil || n != 0 {
		t.Fatalf("seed on non-empty store: n=%d err=%v", n, err)
	}
	if n, _ := SeedSchemesIfEmpty(ctx, db, nil); n != 0 {
		t.Fatalf("empty list should insert nothing")
	}
}

func TestSchemesStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, maxID, err := SchemesStats(ctx, db)
	if err != nil || count != 0 || maxID != 0 {
		t.Fatalf("empty stats = %d/%d/%v", count, maxID, err)
	}

	if _, err := SeedSchemesIfEmpty(ctx, db, fixtureSchemes()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	count, maxID, err = SchemesStats(ctx, db)
	if err != nil || count != 5 || maxID != 5 {
		t.Fatalf("seeded stats = %d/%d/%v", count, maxID, err)
	}
}

func TestSchemeFilter_IsZero(t *testing.T) {
	if !(SchemeFilter{StateAlwaysInclude: widening}).IsZero() {
		t.Fatalf("widening list alone should not make a filter non-zero")
	}
	if (SchemeFilter{Search: "x"}).IsZero() {
		t.Fatalf("search filter is not zero")
	}
}

func TestEscapeLikeAndKeywordPattern(t *testing.T) {
	if got := escapeLike("50%_off!"); got != "50!%!_off!!" {
		t.Fatalf("escapeLike = %q", got)
	}
	if got := keywordPatterns("Millet"); len(got) != 1 || got[0] != `%"millet"%` {
		t.Fatalf("keywordPatterns(Millet) = %q", got)
	}
	got := keywordPatterns("R&D")
	if len(got) != 2 || got[0] != `%"r&d"%` || got[1] != `%"r\u0026d"%` {
		t.Fatalf("keywordPatterns(R&D) = %q", got)
	}
}

func TestQuerySchemes_KeywordWithHTMLCharacters(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()
	s := domain.Scheme{
		Name:               "Startup Innovation Grant",
		Category:           "Business & Entrepreneurship",
		Description:        "Seed funding for young firms.",
		Beneficiaries:      "b",
		Eligibility:        "e",
		Benefits:           "grant",
		Documents:          "PAN",
		ApplicationProcess: "apply",
		State:              "Pan India",
		Keywords:           datatypes.JSONSlice[string]{"R&D", "<startup>"},
	}
	s.ApplyDefaults()
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, term := range []string{"r&d", "R&D", "<startup>"} {
		got, err := QuerySchemes(ctx, db, SchemeFilter{Search: term})
		if err != nil {
			t.Fatalf("QuerySchemes(%q): %v", term, err)
		}
		assertNames(t, got, "Startup Innovation Grant")
	}
}
