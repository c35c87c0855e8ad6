package app

import (
	"strings"
	"unicode/utf8"

	"github.com/ukydev/ride-booking/internal/models"
)

// MinQueryLength is the shortest query that produces suggestions.
const MinQueryLength = 3

// Places suggests start and end locations.
type Places struct {
	known []models.Location
}

func NewPlaces(known []models.Location) *Places {
	return &Places{known: append([]models.Location(nil), known...)}
}

// Search returns the saved locations followed by the known places whose name
// or address contains the query. Queries shorter than MinQueryLength return
// nothing. Results are de-duplicated by id.
func (p *Places) Search(query string, saved []models.Location) []models.Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []models.Location{}
	}

	seen := make(map[string]struct{}, len(saved)+len(p.known))
	out := make([]models.Location, 0, len(saved)+len(p.known))
	add := func(l models.Location) {
		if _, dup := seen[l.ID]; dup {
			return
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}

	for _, l := range saved {
		add(l)
	}
	for _, l := range p.known {
		if strings.Contains(strings.ToLower(l.Name), q) || strings.Contains(strings.ToLower(l.Address), q) {
			add(l)
		}
	}
	return out
}
