package course

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCutoff is the minimum confidence for a catalog suggestion.
const DefaultCutoff = 0.6

// Entry is a known course with optional aliases.
type Entry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Catalog is the list of courses offered by the school, used only for
// best-effort inference. It never decides the session course by itself.
type Catalog struct {
	Courses []Entry `yaml:"courses"`
	Cutoff  float64 `yaml:"cutoff,omitempty"`
}

// Suggestion is the closest catalog entry for a free-text course.
type Suggestion struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// LoadCatalog reads a YAML catalog. A missing file yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Catalog{Cutoff: DefaultCutoff}, nil
		}
		return nil, fmt.Errorf("read course catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse course catalog: %w", err)
	}
	if c.Cutoff <= 0 {
		c.Cutoff = DefaultCutoff
	}
	return &c, nil
}

var stopwords = map[string]bool{
	"em": true, "de": true, "da": true, "do": true, "das": true, "dos": true,
	"e": true, "curso": true,
}

// Infer returns the closest catalog course. ok is false when the catalog is
// empty or the best confidence is below the cutoff. Ties keep catalog order.
func (c *Catalog) Infer(text string) (Suggestion, bool) {
	if c == nil {
		return Suggestion{}, false
	}
	key := Normalize(text)
	if key == "" {
		return Suggestion{}, false
	}

	var best Suggestion
	for _, e := range c.Courses {
		score := similarity(key, Normalize(e.Name))
		for _, alias := range e.Aliases {
			if s := similarity(key, Normalize(alias)); s > score {
				score = s
			}
		}
		if score > best.Confidence {
			best = Suggestion{Key: Normalize(e.Name), Label: e.Name, Confidence: score}
		}
	}

	cutoff := c.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	if best.Confidence < cutoff {
		return Suggestion{}, false
	}
	return best, true
}

// similarity averages how much of the typed text the candidate covers with the
// Jaccard index of both token sets. Equal keys score 1.
func similarity(typed, candidate string) float64 {
	if typed == candidate {
		return 1
	}
	a := tokens(typed)
	b := tokens(candidate)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter

	coverage := float64(inter) / float64(len(a))
	jaccard := float64(inter) / float64(union)
	return (coverage + jaccard) / 2
}

func tokens(key string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Split(key, Separator) {
		if t == "" || stopwords[t] {
			continue
		}
		out[t] = true
	}
	return out
}
