package report

import "fmt"

// Format renders the report in the requested output format.
func Format(r *Report, format string) (string, error) {
	switch format {
	case "html":
		return r.ToHTML()
	case "text":
		return r.ToText()
	case "markdown":
		return r.ToMarkdown()
	case "csv":
		return r.ToCSV()
	case "json":
		b, err := r.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}
