package vocab

import (
	"log/slog"
	"strings"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
)

// CatchAll is the sentinel category for anything the dictionary does
// not recognize.
const CatchAll = "INNE"

// Dictionary is the controlled vocabulary: allowed categories with
// their subcategories, and the flat list of item conditions. It is
// built once at startup and never mutated afterwards.
type Dictionary struct {
	categories map[string][]string
	conditions []string
}

// Default returns the registry dictionary used by every office.
func Default() *Dictionary {
	return &Dictionary{
		categories: map[string][]string{
			"ELEKTRONIKA": {
				"Telefon", "Laptop", "Tablet", "Słuchawki",
				"Smartwatch", "Ładowarka", "Aparat fotograficzny", "Inne",
			},
			"DOKUMENTY": {
				"Dowód osobisty", "Paszport", "Prawo jazdy",
				"Legitymacja", "Karta płatnicza", "Inne",
			},
			"ODZIEŻ": {
				"Kurtka", "Czapka", "Szalik", "Rękawiczki", "Buty", "Inne",
			},
			"BIŻUTERIA": {
				"Pierścionek", "Zegarek", "Naszyjnik", "Bransoletka",
				"Kolczyki", "Inne",
			},
			"TORBY I PLECAKI": {
				"Plecak", "Torebka", "Walizka", "Portfel", "Saszetka", "Inne",
			},
			"KLUCZE": {
				"Klucze do mieszkania", "Klucze samochodowe", "Inne",
			},
			CatchAll: {
				"Okulary", "Parasol", "Zabawka", "Książka", "Inne",
			},
		},
		conditions: []string{
			"Nowy", "Bardzo dobry", "Dobry",
			"Widoczne ślady użytkowania", "Uszkodzony",
		},
	}
}

// Categories returns the category keys in no particular order.
func (d *Dictionary) Categories() []string {
	keys := make([]string, 0, len(d.categories))
	for k := range d.categories {
		keys = append(keys, k)
	}
	return keys
}

// Subcategories returns the allowed subcategories for a category, or
// nil when the category is unknown.
func (d *Dictionary) Subcategories(category string) []string {
	return d.categories[category]
}

// Conditions returns the allowed condition values.
func (d *Dictionary) Conditions() []string {
	return d.conditions
}

// ResolveCategory maps a free-text category onto a dictionary key.
// The raw value is trimmed and uppercased; anything that is not an
// exact key resolves to the catch-all. Total: never errors.
func (d *Dictionary) ResolveCategory(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := d.categories[key]; ok {
		return key
	}
	return CatchAll
}

// ResolveSubcategory matches raw against the category's allowed list,
// case-insensitively. A match returns the dictionary's canonical
// casing. A miss returns the raw text unchanged so the form can route
// it to its custom-value affordance instead of losing AI output.
func (d *Dictionary) ResolveSubcategory(category, raw string) string {
	allowed := d.categories[category]
	if len(allowed) == 0 {
		return ""
	}
	trimmed := strings.TrimSpace(raw)
	for _, s := range allowed {
		if strings.EqualFold(s, trimmed) {
			return s
		}
	}
	return raw
}

// ResolveCondition matches raw against the condition list,
// case-insensitively. A miss returns the empty string: invented
// condition values are dropped, not guessed at.
func (d *Dictionary) ResolveCondition(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, s := range d.conditions {
		if strings.EqualFold(s, trimmed) {
			return s
		}
	}
	return ""
}

// Normalize resolves every categorical field of a raw report against
// the dictionary and copies the rest through unchanged. It is a pure,
// total transform; the logging is diagnostic only.
func (d *Dictionary) Normalize(raw model.RawReport) model.NormalizedReport {
	kategoria := d.ResolveCategory(raw.Kategoria)
	podkategoria := d.ResolveSubcategory(kategoria, raw.Podkategoria)
	stan := d.ResolveCondition(raw.Cechy.Stan)

	if kategoria != raw.Kategoria || podkategoria != raw.Podkategoria || stan != raw.Cechy.Stan {
		slog.Debug("report normalized",
			"raw_kategoria", raw.Kategoria,
			"kategoria", kategoria,
			"raw_podkategoria", raw.Podkategoria,
			"podkategoria", podkategoria,
			"raw_stan", raw.Cechy.Stan,
			"stan", stan,
		)
	}

	return model.NormalizedReport{
		Kategoria:    kategoria,
		Podkategoria: podkategoria,
		Nazwa:        raw.Nazwa,
		Opis:         raw.Opis,
		Cechy: model.Cechy{
			Kolor: raw.Cechy.Kolor,
			Marka: raw.Cechy.Marka,
			Stan:  stan,
		},
		Data:    raw.Data,
		Miejsce: raw.Miejsce,
		Lat:     raw.Lat,
		Lng:     raw.Lng,
	}
}
