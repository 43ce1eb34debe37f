// Package intent classifies free-text chat messages into a coarse intent plus
// optional category and jurisdiction filters.
//
// Classification is keyword based and case-insensitive. Greetings are matched
// on word boundaries; everything else is matched by substring so compound
// words and transliterations ("kisansamman", "farmers") still hit. Short
// tokens such as "ka" therefore fire inside unrelated words; that trade-off
// is kept deliberately and locked by tests.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a message.
type Intent string

const (
	Greeting    Intent = "greeting"
	SchemeQuery Intent = "scheme_query"
	Unknown     Intent = "unknown"
)

// String implements fmt.Stringer.
func (i Intent) String() string { return string(i) }

// Canonical jurisdiction values emitted by the classifier.
const (
	RegionState    = "Karnataka"
	NationalSource = "Central"
)

// Result is the outcome of classifying one message. Optional fields are empty
// when the corresponding signal was not detected.
type Result struct {
	Intent   Intent   `json:"intent"`
	Category string   `json:"category,omitempty"`
	State    string   `json:"state,omitempty"`
	Source   string   `json:"source,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Rule maps a set of substring keywords to a category label.
type Rule struct {
	Category string
	Keywords []string
}

// Matches reports whether any keyword occurs in the lower-cased text.
func (r Rule) Matches(lower string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

var (
	greetingRE = regexp.MustCompile(`\b(hi|hello|hey|greetings|namaste)\b`)

	regionTokens   = []string{"karnataka", "state", "ka"}
	nationalTokens = []string{"central", "india", "center"}
)

// CategoryRules is evaluated in order and the first matching rule wins, so a
// message mentioning both "farmer" and "student" is an agriculture query.
// Reordering this table changes classification results.
var CategoryRules = []Rule{
	{Category: "Agriculture & Farmers", Keywords: []string{
		"farmer", "kisan", "agriculture", "crop", "soil", "harvest", "sinchayee", "irrigation",
		"nmsa", "smam", "nbhm", "pmmsy", "matsya", "bamboo", "nbm", "oil palm", "nmeoop", "rsk",
		"neeravari", "ksheerdhare", "milk", "dairy", "millet", "ganga kalyana", "borewell",
	}},
	{Category: "Education & Students", Keywords: []string{
		"student", "scholarship", "education", "college", "school", "university", "study",
		"vidyanidhi", "usha", "noss", "overseas", "literacy", "numeracy", "pbbb", "swayam",
		"prabha", "udaan", "stem", "chennamma", "uniform", "textbook", "bhagya", "morarji", "kreis",
	}},
	{Category: "Women & Child Welfare", Keywords: []string{
		"woman", "women", "girl", "female", "lady", "maternity", "widow", "sister", "mother",
		"shakti", "safety", "sakhi", "181", "nirbhaya", "step", "pm-cares", "orphan", "adoption",
		"cara", "rmk", "mahila kosh", "udyogini", "stree shakti", "sashaktikaran", "udyoga lakshmi",
	}},
	{Category: "Employment & Skill Development", Keywords: []string{
		"job", "work", "employment", "skill", "career", "salary", "wage", "startup", "business",
		"vishwakarma", "aspire", "pmegp", "kvic", "zed", "msme", "nssh", "sc-st hub", "clcss",
		"machinery", "elevate", "yuva nidhi",
	}},
	{Category: "Health & Insurance", Keywords: []string{
		"health", "hospital", "medical", "doctor", "treatment", "medicine", "insurance",
		"ayushman", "mental", "tb", "tuberculosis", "cancer", "diabetes", "cardiovascular",
		"geriatric", "elderly", "nphce", "leprosy", "nlep", "arogya", "sast", "manasadhara",
	}},
	{Category: "Housing & Urban", Keywords: []string{
		"house", "housing", "home", "flat", "urban", "rural", "construction", "basava", "awas",
		"ujjwala", "gas", "electricity", "power", "light", "saubhagya", "solar", "kusum",
		"panels", "tap", "jaladhare", "jalamrutha",
	}},
	{Category: "Senior Citizens & Pension", Keywords: []string{
		"senior", "pension", "old", "elder", "retired", "retirement", "atal", "apy",
		"swavalamban", "pmvvy", "vaya vandana", "sandhya suraksha",
	}},
}

// Classifier applies an ordered category table to messages. The zero value
// uses CategoryRules.
type Classifier struct {
	Rules []Rule
}

// New returns a Classifier over the default rule table.
func New() *Classifier {
	return &Classifier{Rules: CategoryRules}
}

// Classify is a convenience wrapper over the default rule table.
func Classify(message string) Result {
	return (&Classifier{}).Classify(message)
}

// Classify returns the intent and filters detected in message. It never
// fails: every input maps to exactly one Result.
func (c *Classifier) Classify(message string) Result {
	lower := strings.ToLower(message)

	if greetingRE.MatchString(lower) {
		return Result{Intent: Greeting}
	}

	res := Result{Intent: Unknown}

	if containsAny(lower, regionTokens) {
		res.State = RegionState
		res.Intent = SchemeQuery
	}
	if containsAny(lower, nationalTokens) {
		res.Source = NationalSource
		res.Intent = SchemeQuery
	}

	rules := c.Rules
	if rules == nil {
		rules = CategoryRules
	}
	for _, r := range rules {
		if r.Matches(lower) {
			res.Category = r.Category
			res.Keywords = append([]string(nil), r.Keywords...)
			res.Intent = SchemeQuery
			break
		}
	}
	return res
}

// Categories returns the category labels in rule order.
func (c *Classifier) Categories() []string {
	rules := c.Rules
	if rules == nil {
		rules = CategoryRules
	}
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Category)
	}
	return out
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
