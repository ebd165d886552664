package maps

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// RawCard is one visible result element as pulled from the page: the
// place link's aria-label plus the card container's HTML and inner text.
type RawCard struct {
	Name string `json:"name"`
	HTML string `json:"html"`
	Text string `json:"text"`
}

var (
	// "4,5(1.234)" or "4,5 (1.234)"
	ratingParenRe = regexp.MustCompile(`(\d[,.]\d)\s*\(`)
	// a decimal score alone at the start of a line
	ratingLineRe = regexp.MustCompile(`(?m)^(\d[,.]\d)`)
	ratingOnlyRe = regexp.MustCompile(`^\d[,.]\d$`)
	// review counts between parentheses, pt-BR thousand separators kept
	reviewsRe = regexp.MustCompile(`\(([0-9][0-9.]*)\)`)
	// opening-hours / delivery status lines, never an address
	hoursRe = regexp.MustCompile(`(?i)(Aberto|Fechado|Fecha|Abre|24 horas|Delivery|Retirada)`)
)

// Brazilian street prefixes and postal codes used to spot address lines.
var addressRes = []*regexp.Regexp{
	regexp.MustCompile(`R\.\s`),
	regexp.MustCompile(`Av\.\s`),
	regexp.MustCompile(`Al\.\s`),
	regexp.MustCompile(`Tv\.\s`),
	regexp.MustCompile(`Pç\.\s`),
	regexp.MustCompile(`Rod\.\s`),
	regexp.MustCompile(`Estr\.\s`),
	regexp.MustCompile(`\d{5}-?\d{3}`),
	regexp.MustCompile(`Rua\s`),
	regexp.MustCompile(`Avenida\s`),
	regexp.MustCompile(`Alameda\s`),
	regexp.MustCompile(`Praça\s`),
	regexp.MustCompile(`Travessa\s`),
	regexp.MustCompile(`Rodovia\s`),
	regexp.MustCompile(`Estrada\s`),
}

// Extractor converts one visible result card into a candidate record.
// Each field is extracted independently: a missing sub-element yields an
// absent field and a warning, never an aborted card.
type Extractor struct {
	Log *logrus.Logger
}

// Extract builds an Establishment from the card, tagged with the
// enclosing category. It never fails: an unexpected structural fault is
// caught at the card boundary and yields an empty record instead of
// stopping the category.
func (x *Extractor) Extract(card RawCard, cat Category) (rec Establishment) {
	defer func() {
		if r := recover(); r != nil {
			x.Log.WithFields(logrus.Fields{
				"card":  snippet(card.Name + " " + card.Text),
				"fault": r,
			}).Error("card extraction faulted, emitting empty record")
			rec = Establishment{Category: cat}
		}
	}()

	rec = Establishment{Category: cat}

	rec.Name = strings.TrimSpace(card.Name)
	if rec.Name == "" {
		x.warnMissing("name", card)
	}

	text := card.Text
	doc := parseCard(card.HTML)
	if strings.TrimSpace(text) == "" && doc != nil {
		// Some cards only expose text through their HTML subtree.
		text = doc.Text()
	}

	rec.Rating = x.extractRating(doc, text)
	if rec.Rating == "" {
		x.warnMissing("rating", card)
	} else {
		x.Log.WithFields(logrus.Fields{"card": rec.Name, "rating": rec.Rating}).Debug("rating extracted")
	}

	rec.ReviewCount = x.extractReviews(doc, text)
	if rec.ReviewCount == "" {
		x.warnMissing("review_count", card)
	} else {
		x.Log.WithFields(logrus.Fields{"card": rec.Name, "reviews": rec.ReviewCount}).Debug("review count extracted")
	}

	rec.Address = extractAddress(text)
	if rec.Address == "" {
		x.warnMissing("address", card)
	} else {
		x.Log.WithFields(logrus.Fields{"card": rec.Name, "address": rec.Address}).Debug("address extracted")
	}

	return rec
}

func (x *Extractor) warnMissing(field string, card RawCard) {
	x.Log.WithFields(logrus.Fields{
		"field": field,
		"card":  snippet(card.Name + " " + card.Text),
	}).Warnf("card is missing %s", field)
}

func parseCard(html string) *goquery.Document {
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

// extractRating prefers the dedicated rating span in the card markup and
// falls back to regex over the card text.
func (x *Extractor) extractRating(doc *goquery.Document, text string) string {
	if doc != nil {
		v := strings.TrimSpace(doc.Find("span.MW4etd").First().Text())
		if ratingOnlyRe.MatchString(v) {
			return strings.ReplaceAll(v, ".", ",")
		}
	}
	if m := ratingParenRe.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], ".", ",")
	}
	if m := ratingLineRe.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], ".", ",")
	}
	return ""
}

func (x *Extractor) extractReviews(doc *goquery.Document, text string) string {
	if doc != nil {
		v := strings.TrimSpace(doc.Find("span.UY7F9").First().Text())
		if m := reviewsRe.FindStringSubmatch(v); m != nil {
			return m[1]
		}
	}
	if m := reviewsRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// extractAddress scans the card lines for Brazilian address patterns,
// then falls back to the trailing lines of the card, skipping status and
// rating-only lines.
func extractAddress(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	for _, line := range lines {
		for _, re := range addressRes {
			if re.MatchString(line) {
				return line
			}
		}
	}

	if len(lines) >= 3 {
		tail := lines
		if len(tail) > 4 {
			tail = tail[len(tail)-4:]
		}
		for i := len(tail) - 1; i >= 0; i-- {
			line := tail[i]
			if hoursRe.MatchString(line) {
				continue
			}
			if ratingOnlyRe.MatchString(line) {
				continue
			}
			if len(line) > 10 {
				return line
			}
		}
	}

	return ""
}

// snippet trims an identifying fragment of the card for log messages.
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:60]) + "…"
	}
	return s
}
