package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CategoryFilter selects either the whole pool ("all") or one category.
// Collaborator payloads reference a category as either a raw id string or
// a populated object carrying an "_id" field; both decode to the same
// resolved value here so downstream logic only ever compares plain ids.
type CategoryFilter struct {
	All bool
	ID  uuid.UUID
}

// AllCategories is the filter matching every category.
var AllCategories = CategoryFilter{All: true}

// CategoryOf builds a filter matching one category.
func CategoryOf(id uuid.UUID) CategoryFilter {
	return CategoryFilter{ID: id}
}

// Matches reports whether a question's category passes the filter.
// The zero value (absent category_id in the payload) matches everything,
// same as an explicit "all".
func (f CategoryFilter) Matches(categoryID uuid.UUID) bool {
	return f.All || f.ID == uuid.Nil || f.ID == categoryID
}

func (f *CategoryFilter) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if raw == "" || raw == "all" {
			*f = AllCategories
			return nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid category id %q: %w", raw, err)
		}
		*f = CategoryFilter{ID: id}
		return nil
	}

	// Populated reference object.
	var ref struct {
		ID uuid.UUID `json:"_id"`
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return fmt.Errorf("invalid category reference: %w", err)
	}
	*f = CategoryFilter{ID: ref.ID}
	return nil
}

func (f CategoryFilter) MarshalJSON() ([]byte, error) {
	if f.All {
		return json.Marshal("all")
	}
	return json.Marshal(f.ID.String())
}
