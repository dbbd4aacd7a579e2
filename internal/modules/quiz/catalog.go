package quiz

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Archetype is one of the five creator personas.
type Archetype string

const (
	Educator    Archetype = "educator"
	Entertainer Archetype = "entertainer"
	Lifestyle   Archetype = "lifestyle"
	Reviewer    Archetype = "reviewer"
	Journey     Archetype = "journey"
)

// Archetypes is the declaration order used to break score ties.
var Archetypes = []Archetype{Educator, Entertainer, Lifestyle, Reviewer, Journey}

func ParseArchetype(s string) (Archetype, bool) {
	v := Archetype(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range Archetypes {
		if a == v {
			return a, true
		}
	}
	return "", false
}

type Kind string

const (
	KindSingle Kind = "single"
	KindMulti  Kind = "multi"
)

// Meta tags mark questions whose answers feed response metadata.
const (
	MetaTimeBucket = "time_bucket"
	MetaGear       = "gear"
	MetaAudience   = "audience"
	MetaTopics     = "topics"
	MetaPlatform   = "platform"
)

var TimeBuckets = []string{"under_2h", "2_to_5h", "5_to_10h", "over_10h"}

type Option struct {
	ID      string            `yaml:"id" json:"id"`
	Label   string            `yaml:"label" json:"label"`
	Value   string            `yaml:"value,omitempty" json:"value,omitempty"`
	Weights map[Archetype]int `yaml:"weights,omitempty" json:"-"`
}

// MetaValue is the value recorded when the option feeds metadata.
func (o Option) MetaValue() string {
	if o.Value != "" {
		return o.Value
	}
	return o.ID
}

type Question struct {
	ID        string   `yaml:"id" json:"id"`
	Prompt    string   `yaml:"prompt" json:"prompt"`
	Kind      Kind     `yaml:"kind" json:"kind"`
	Meta      string   `yaml:"meta,omitempty" json:"meta,omitempty"`
	AllowText bool     `yaml:"allow_text,omitempty" json:"allow_text,omitempty"`
	Options   []Option `yaml:"options" json:"options"`
}

func (q *Question) option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

type ArchetypeProfile struct {
	ID           Archetype `yaml:"id" json:"id"`
	Name         string    `yaml:"name" json:"name"`
	Description  string    `yaml:"description" json:"description"`
	DefaultIdeas []string  `yaml:"default_ideas" json:"default_ideas"`
}

// Catalog is the ordered quiz definition.
type Catalog struct {
	Archetypes []ArchetypeProfile `yaml:"archetypes" json:"archetypes"`
	Questions  []Question         `yaml:"questions" json:"questions"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(catalogYAML)
	})
	return defaultCat, defaultErr
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse quiz catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Archetypes) != len(Archetypes) {
		return fmt.Errorf("expected %d archetypes, got %d", len(Archetypes), len(c.Archetypes))
	}
	for i, a := range c.Archetypes {
		if a.ID != Archetypes[i] {
			return fmt.Errorf("archetype %d is %q, want %q", i, a.ID, Archetypes[i])
		}
		if len(a.DefaultIdeas) == 0 {
			return fmt.Errorf("archetype %q has no default ideas", a.ID)
		}
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("no questions")
	}

	seenQ := map[string]bool{}
	seenMeta := map[string]bool{}
	for _, q := range c.Questions {
		if q.ID == "" || seenQ[q.ID] {
			return fmt.Errorf("missing or duplicate question id %q", q.ID)
		}
		seenQ[q.ID] = true
		if q.Kind != KindSingle && q.Kind != KindMulti {
			return fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q has no options", q.ID)
		}
		switch q.Meta {
		case "":
		case MetaTimeBucket, MetaGear, MetaAudience, MetaTopics, MetaPlatform:
			if seenMeta[q.Meta] {
				return fmt.Errorf("meta tag %q used twice", q.Meta)
			}
			seenMeta[q.Meta] = true
		default:
			return fmt.Errorf("question %q: unknown meta tag %q", q.ID, q.Meta)
		}
		if q.Meta == MetaTimeBucket && q.Kind != KindSingle {
			return fmt.Errorf("question %q: %s must be single-select", q.ID, MetaTimeBucket)
		}

		seenO := map[string]bool{}
		for _, o := range q.Options {
			if o.ID == "" || seenO[o.ID] {
				return fmt.Errorf("question %q: missing or duplicate option id %q", q.ID, o.ID)
			}
			seenO[o.ID] = true
			for a := range o.Weights {
				if _, ok := ParseArchetype(string(a)); !ok {
					return fmt.Errorf("question %q option %q: unknown archetype %q", q.ID, o.ID, a)
				}
			}
			if q.Meta == MetaTimeBucket && !isTimeBucket(o.MetaValue()) {
				return fmt.Errorf("question %q option %q: unknown time bucket %q", q.ID, o.ID, o.MetaValue())
			}
		}
	}
	return nil
}

func isTimeBucket(v string) bool {
	for _, b := range TimeBuckets {
		if b == v {
			return true
		}
	}
	return false
}

// Profile returns the display profile of an archetype.
func (c *Catalog) Profile(a Archetype) (ArchetypeProfile, bool) {
	for _, p := range c.Archetypes {
		if p.ID == a {
			return p, true
		}
	}
	return ArchetypeProfile{}, false
}

func (c *Catalog) question(id string) (*Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i], true
		}
	}
	return nil, false
}

// DefaultIdeas returns the canned ideas for an archetype.
func (c *Catalog) DefaultIdeas(a Archetype) []string {
	p, ok := c.Profile(a)
	if !ok {
		return nil
	}
	return append([]string(nil), p.DefaultIdeas...)
}
