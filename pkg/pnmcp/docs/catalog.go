package docs

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

//go:embed catalog.yaml
var catalogYAML []byte

// HowToGuide is one entry of the how-to index.
type HowToGuide struct {
	Slug  string `yaml:"slug" json:"slug"`
	Title string `yaml:"title" json:"title"`
}

// Catalog is the static compatibility table between documentation
// languages and features. It is loaded once and never mutated.
type Catalog struct {
	SDK   map[string][]string `yaml:"sdk" json:"sdk"`
	Chat  map[string][]string `yaml:"chat" json:"chat"`
	HowTo []HowToGuide        `yaml:"howTo" json:"howTo"`
}

// LoadCatalog parses the embedded compatibility catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse documentation catalog")
	}

	if len(c.SDK) == 0 || len(c.Chat) == 0 {
		return nil, errors.New("documentation catalog has no languages")
	}

	return &c, nil
}

// SDKLanguages returns the SDK languages in sorted order.
func (c *Catalog) SDKLanguages() []string {
	return sortedKeys(c.SDK)
}

// SDKFeatures returns the union of all SDK features in sorted order.
func (c *Catalog) SDKFeatures() []string {
	return union(c.SDK)
}

// ChatLanguages returns the Chat SDK languages in sorted order.
func (c *Catalog) ChatLanguages() []string {
	return sortedKeys(c.Chat)
}

// ChatFeatures returns the union of all Chat SDK features in sorted order.
func (c *Catalog) ChatFeatures() []string {
	return union(c.Chat)
}

// HowToSlugs returns every known how-to slug in catalog order.
func (c *Catalog) HowToSlugs() []string {
	slugs := make([]string, 0, len(c.HowTo))
	for _, g := range c.HowTo {
		slugs = append(slugs, g.Slug)
	}

	return slugs
}

// CheckSDK validates a (language, feature) pair for the core SDK docs.
func (c *Catalog) CheckSDK(language, feature string) error {
	return check(c.SDK, language, feature)
}

// CheckChat validates a (language, feature) pair for the Chat SDK docs.
func (c *Catalog) CheckChat(language, feature string) error {
	return check(c.Chat, language, feature)
}

// CheckHowTo validates a how-to slug.
func (c *Catalog) CheckHowTo(slug string) error {
	if slices.Contains(c.HowToSlugs(), slug) {
		return nil
	}

	return pnerrs.NewValidationError(
		pnerrs.ErrCodeInvalidFormat,
		pnerrs.Issue{
			Path:    []string{"slug"},
			Message: fmt.Sprintf("unknown how-to guide %q", slug),
		},
	)
}

func check(table map[string][]string, language, feature string) error {
	features, ok := table[language]
	if !ok {
		return pnerrs.NewValidationError(
			pnerrs.ErrCodeInvalidFormat,
			pnerrs.Issue{
				Path:    []string{"language"},
				Message: fmt.Sprintf("unsupported language %q", language),
			},
		)
	}

	if !slices.Contains(features, feature) {
		return pnerrs.NewValidationError(
			pnerrs.ErrCodeUnsupportedFeature,
			pnerrs.Issue{
				Path: []string{"feature"},
				Message: fmt.Sprintf(
					"feature %q is not available for language %q",
					feature, language,
				),
			},
		)
	}

	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func union(m map[string][]string) []string {
	seen := make(map[string]struct{})
	for _, features := range m {
		for _, f := range features {
			seen[f] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)

	return out
}
