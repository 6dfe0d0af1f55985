package entities

import (
	"regexp"
	"strings"

	"github.com/ternarybob/docforge/internal/models"
)

// Token placeholders ({{X}}, [X], <X>) are explicit author intent and
// carry full confidence. Underscore blanks have no token of their own,
// so their inferred type is only heuristic.
const (
	confToken = 1.0
	confBlank = 0.7
)

// blankContextWindow is how far back to look for a label when a bare
// underscore blank carries no token of its own.
const blankContextWindow = 30

var (
	reCurlyPlaceholder  = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
	reSquarePlaceholder = regexp.MustCompile(`\[([^\[\]]+?)\]`)
	reAnglePlaceholder  = regexp.MustCompile(`<([^<>]+?)>`)
	reBlank             = regexp.MustCompile(`_{3,}`)
)

// placeholderType infers the entity type from a placeholder token
func placeholderType(token string) models.EntityType {
	upper := strings.ToUpper(token)
	switch {
	case strings.Contains(upper, "NAME"):
		return models.EntityPerson
	case strings.Contains(upper, "COMPANY"), strings.Contains(upper, "ORG"):
		return models.EntityOrganization
	case strings.Contains(upper, "DATE"), strings.Contains(upper, "DOB"):
		return models.EntityDate
	case strings.Contains(upper, "AMOUNT"), strings.Contains(upper, "PRICE"):
		return models.EntityMoney
	case strings.Contains(upper, "ADDRESS"), strings.Contains(upper, "CITY"):
		return models.EntityLocation
	case strings.Contains(upper, "TITLE"), strings.Contains(upper, "ROLE"):
		return models.EntityRole
	case strings.Contains(upper, "EMAIL"):
		return models.EntityEmail
	case strings.Contains(upper, "PHONE"):
		return models.EntityPhone
	default:
		return models.EntityIdentifier
	}
}

// blankCues are the labels scanned for in the context before an
// underscore blank. The cue closest to the blank wins, so
// "Name: ___ Date: ___" types the second blank as a date.
var blankCues = []struct {
	keyword string
	t       models.EntityType
}{
	{"NAME", models.EntityPerson},
	{"COMPANY", models.EntityOrganization},
	{"ORG", models.EntityOrganization},
	{"DATE", models.EntityDate},
	{"DOB", models.EntityDate},
	{"AMOUNT", models.EntityMoney},
	{"PRICE", models.EntityMoney},
	{"ADDRESS", models.EntityLocation},
	{"CITY", models.EntityLocation},
	{"TITLE", models.EntityRole},
	{"ROLE", models.EntityRole},
	{"EMAIL", models.EntityEmail},
	{"PHONE", models.EntityPhone},
	{"NUMBER", models.EntityIdentifier},
}

// blankType picks the cue occurring nearest the blank
func blankType(context string) models.EntityType {
	upper := strings.ToUpper(context)
	best := models.EntityIdentifier
	bestIdx := -1
	for _, cue := range blankCues {
		if idx := strings.LastIndex(upper, cue.keyword); idx > bestIdx {
			bestIdx = idx
			best = cue.t
		}
	}
	return best
}

// placeholderEntities finds explicit author-marked slots: {{X}}, [X],
// <X> and underscore blanks. The source text is never mutated.
func placeholderEntities(text string) []models.Entity {
	var out []models.Entity

	collect := func(re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			token := text[m[2]:m[3]]
			out = append(out, models.Entity{
				Type:       placeholderType(token),
				Text:       text[m[0]:m[1]],
				Start:      m[0],
				End:        m[1],
				Confidence: confToken,
				Origin:     models.OriginPlaceholder,
			})
		}
	}

	collect(reCurlyPlaceholder)
	collect(reSquarePlaceholder)
	collect(reAnglePlaceholder)

	// Blanks carry no token; infer type from the text just before them
	for _, loc := range reBlank.FindAllStringIndex(text, -1) {
		contextStart := loc[0] - blankContextWindow
		if contextStart < 0 {
			contextStart = 0
		}
		out = append(out, models.Entity{
			Type:       blankType(text[contextStart:loc[0]]),
			Text:       text[loc[0]:loc[1]],
			Start:      loc[0],
			End:        loc[1],
			Confidence: confBlank,
			Origin:     models.OriginPlaceholder,
		})
	}

	return out
}
