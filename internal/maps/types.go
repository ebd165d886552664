package maps

import (
	"fmt"
	"strings"
)

// Category is one of the fixed business types queried.
type Category string

const (
	CategoryGym          Category = "gym"
	CategoryRestaurant   Category = "restaurant"
	CategoryIceCreamShop Category = "ice_cream_shop"
)

// queryTerms maps a category to its locality-parameterized search term.
// The terms are Portuguese because the target surface is queried in pt-BR.
var queryTerms = map[Category]string{
	CategoryGym:          "academias em %s",
	CategoryRestaurant:   "restaurantes em %s",
	CategoryIceCreamShop: "sorveterias em %s",
}

// Query returns the search term for the category in the given locality.
func (c Category) Query(locality string) string {
	if term, ok := queryTerms[c]; ok {
		return fmt.Sprintf(term, locality)
	}
	return fmt.Sprintf("%s em %s", string(c), locality)
}

// ParseCategory resolves a command-line category name.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryGym:
		return CategoryGym, nil
	case CategoryRestaurant:
		return CategoryRestaurant, nil
	case CategoryIceCreamShop:
		return CategoryIceCreamShop, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// Establishment is one extracted result card. Category is always set by
// the search that produced the record; every other field may be absent,
// with "" meaning absent. Records are immutable once created.
type Establishment struct {
	Name        string   `json:"name,omitempty"`
	Category    Category `json:"category"`
	Rating      string   `json:"rating,omitempty"`
	ReviewCount string   `json:"review_count,omitempty"`
	Address     string   `json:"address,omitempty"`
}

// DedupKey is the identity used to collapse duplicate cards within one
// category: normalized name plus address, or name alone when the address
// is absent.
func (e Establishment) DedupKey() string {
	if e.Address == "" {
		return normalize(e.Name)
	}
	return normalize(e.Name) + "|" + normalize(e.Address)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
