package models

import "strings"

// EntityType is the closed set of recognized entity categories
type EntityType string

const (
	EntityPerson        EntityType = "PERSON"
	EntityOrganization  EntityType = "ORGANIZATION"
	EntityDate          EntityType = "DATE"
	EntityMoney         EntityType = "MONEY"
	EntityLocation      EntityType = "LOCATION"
	EntityRole          EntityType = "ROLE"
	EntityGenderPronoun EntityType = "GENDER_PRONOUN"
	EntityIdentifier    EntityType = "IDENTIFIER"
	EntityEmail         EntityType = "EMAIL"
	EntityPhone         EntityType = "PHONE"
)

// EntityOrigin records which pass produced an entity
type EntityOrigin string

const (
	OriginModel       EntityOrigin = "model"       // trained statistical recognizer
	OriginRule        EntityOrigin = "rule"        // deterministic pattern pass
	OriginPlaceholder EntityOrigin = "placeholder" // explicit author-marked field
)

// Entity is a classified span of the source text. Placeholders and
// recognized entities share this struct so downstream code handles both
// through one tagged value; Origin distinguishes the variants.
type Entity struct {
	Type       EntityType   `json:"type"`
	Text       string       `json:"text"`
	Start      int          `json:"start"` // character offset into source text
	End        int          `json:"end"`
	Confidence float64      `json:"confidence"` // in [0,1]
	Origin     EntityOrigin `json:"origin"`
}

// Key returns the deduplication key: at most one entity survives per
// (type, lowercased text) pair.
func (e Entity) Key() string {
	return string(e.Type) + "\x00" + strings.ToLower(e.Text)
}

// DedupeEntities collapses duplicates by Key, keeping the highest
// confidence. Equal confidence resolves in scan order: first wins.
func DedupeEntities(entities []Entity) []Entity {
	index := make(map[string]int, len(entities))
	result := make([]Entity, 0, len(entities))

	for _, e := range entities {
		key := e.Key()
		if at, seen := index[key]; seen {
			if e.Confidence > result[at].Confidence {
				result[at] = e
			}
			continue
		}
		index[key] = len(result)
		result = append(result, e)
	}

	return result
}
