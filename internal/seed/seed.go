// Package seed loads scheme catalogues from YAML. The default catalogue is
// embedded in the binary; operators can point SEED_PATH or `seed --file` at
// their own file with the same layout.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
)

//go:embed schemes.yaml
var defaultCatalogue []byte

// Entry is one scheme as written in a catalogue file.
type Entry struct {
	Name               string              `yaml:"name"`
	Category           string              `yaml:"category"`
	Description        string              `yaml:"description"`
	Beneficiaries      string              `yaml:"beneficiaries"`
	Eligibility        string              `yaml:"eligibility"`
	Benefits           string              `yaml:"benefits"`
	Documents          string              `yaml:"documents"`
	ApplicationProcess string              `yaml:"applicationProcess"`
	OfficialLink       string              `yaml:"officialLink"`
	Source             string              `yaml:"source"`
	State              string              `yaml:"state"`
	Keywords           []string            `yaml:"keywords"`
	Translations       domain.Translations `yaml:"translations"`
}

type catalogue struct {
	Schemes []Entry `yaml:"schemes"`
}

// ErrEmptyCatalogue is returned when a file decodes but lists no schemes.
var ErrEmptyCatalogue = errors.New("catalogue has no schemes")

// Default returns the embedded catalogue.
func Default() ([]domain.Scheme, error) {
	return Load(bytes.NewReader(defaultCatalogue))
}

// LoadFile reads a catalogue from path.
func LoadFile(path string) ([]domain.Scheme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Resolve returns the catalogue at path, or the embedded one when path is
// blank.
func Resolve(path string) ([]domain.Scheme, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

// Load decodes a catalogue and validates every entry. Unknown fields are
// rejected so typos do not silently drop data.
func Load(r io.Reader) ([]domain.Scheme, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c catalogue
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalogue
		}
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if len(c.Schemes) == 0 {
		return nil, ErrEmptyCatalogue
	}

	out := make([]domain.Scheme, 0, len(c.Schemes))
	for i, e := range c.Schemes {
		s := e.toScheme()
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scheme %d (%q): %w", i+1, e.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (e Entry) toScheme() domain.Scheme {
	kw := make([]string, 0, len(e.Keywords))
	for _, k := range e.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	tr := e.Translations
	if tr == nil {
		tr = domain.Translations{}
	}
	s := domain.Scheme{
		Name:               e.Name,
		Category:           e.Category,
		Description:        strings.TrimSpace(e.Description),
		Beneficiaries:      strings.TrimSpace(e.Beneficiaries),
		Eligibility:        strings.TrimSpace(e.Eligibility),
		Benefits:           strings.TrimSpace(e.Benefits),
		Documents:          strings.TrimSpace(e.Documents),
		ApplicationProcess: strings.TrimSpace(e.ApplicationProcess),
		OfficialLink:       e.OfficialLink,
		Source:             e.Source,
		State:              e.State,
		Keywords:           datatypes.JSONSlice[string](kw),
		Translations:       datatypes.NewJSONType(tr),
	}
	s.ApplyDefaults()
	return s
}
