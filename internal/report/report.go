// Package report serializes the collected record sets. It has no
// knowledge of how they were produced beyond the in-memory aggregate.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"mapscout/internal/maps"
)

var columns = []string{"Name", "Category", "Rating", "Reviews", "Address"}

// Report holds one run's aggregate ready for serialization.
type Report struct {
	Locality  string
	Generated time.Time
	results   *maps.Results
}

// New builds a report over the aggregate.
func New(locality string, results *maps.Results) *Report {
	return &Report{
		Locality:  locality,
		Generated: time.Now(),
		results:   results,
	}
}

// rows flattens the aggregate in category order, records in discovery
// order within each category. Absent optional fields render as "N/A" in
// every tabular format; only the JSON export keeps them as true absences.
func (r *Report) rows() [][]string {
	var rows [][]string
	for _, cat := range r.results.Order {
		for _, rec := range r.results.Records[cat] {
			rows = append(rows, []string{
				rec.Name, string(rec.Category), orNA(rec.Rating), orNA(rec.ReviewCount), orNA(rec.Address),
			})
		}
	}
	return rows
}

func (r *Report) ToJSON() ([]byte, error) {
	type payload struct {
		Locality       string               `json:"locality"`
		GeneratedAt    time.Time            `json:"generated_at"`
		Establishments []maps.Establishment `json:"establishments"`
	}
	p := payload{
		Locality:       r.Locality,
		GeneratedAt:    r.Generated,
		Establishments: []maps.Establishment{},
	}
	for _, cat := range r.results.Order {
		p.Establishments = append(p.Establishments, r.results.Records[cat]...)
	}
	return json.MarshalIndent(p, "", "    ")
}

func (r *Report) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(columns)
	for _, row := range r.rows() {
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String(), w.Error()
}

func (r *Report) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Establishments in %s\n\n", r.Locality))
	for _, cat := range r.results.Order {
		recs := r.results.Records[cat]
		sb.WriteString(fmt.Sprintf("%s (%d)\n", cat, len(recs)))
		for i, rec := range recs {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, orNA(rec.Name)))
			sb.WriteString(fmt.Sprintf("   rating %s, reviews %s\n", orNA(rec.Rating), orNA(rec.ReviewCount)))
			sb.WriteString(fmt.Sprintf("   %s\n", orNA(rec.Address)))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (r *Report) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>Establishments in %s</h1>\n", html.EscapeString(r.Locality)))
	sb.WriteString("<table>\n<thead><tr>")
	for _, col := range columns {
		sb.WriteString("<th>" + col + "</th>")
	}
	sb.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range r.rows() {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
	return sb.String(), nil
}

// ToMarkdown renders the HTML report and converts it. The converter does
// not handle tables, so the table is turned into markdown rows first and
// the remainder goes through the converter.
func (r *Report) ToMarkdown() (string, error) {
	page, err := r.ToHTML()
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing report html: %w", err)
	}

	table := tableToMarkdown(doc.Find("table").First())
	doc.Find("table").Remove()

	rest, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("reading report html: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	heading, err := converter.ConvertString(rest)
	if err != nil {
		return "", fmt.Errorf("converting report to markdown: %w", err)
	}

	return strings.TrimSpace(heading) + "\n\n" + table, nil
}

// tableToMarkdown converts a simple thead/tbody table selection into
// markdown table rows.
func tableToMarkdown(table *goquery.Selection) string {
	var sb strings.Builder

	writeRow := func(cells *goquery.Selection) {
		sb.WriteString("|")
		cells.Each(func(_ int, cell *goquery.Selection) {
			sb.WriteString(" " + strings.TrimSpace(cell.Text()) + " |")
		})
		sb.WriteString("\n")
	}

	header := table.Find("thead tr").First()
	writeRow(header.Find("th"))

	sb.WriteString("|")
	header.Find("th").Each(func(_ int, _ *goquery.Selection) {
		sb.WriteString(" --- |")
	})
	sb.WriteString("\n")

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		writeRow(row.Find("td"))
	})

	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
