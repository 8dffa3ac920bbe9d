// Package transcript renders a playthrough's history as Markdown or HTML.
package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/history"
)

// Format selects the output of Render.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "md", "markdown" and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown transcript format %q (want md or html)", s)
}

// Document is one playthrough to render.
type Document struct {
	EpisodeNumber int
	EpisodeTitle  string
	Language      string
	Entries       []history.Entry
	Ended         bool
}

// Title is the heading used for the document.
func (d Document) Title() string {
	if d.EpisodeTitle == "" {
		return fmt.Sprintf("Episode %d", d.EpisodeNumber)
	}
	return fmt.Sprintf("Episode %d: %s", d.EpisodeNumber, d.EpisodeTitle)
}

// Markdown renders the document as Markdown.
func Markdown(d Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title())
	if d.Language != "" {
		fmt.Fprintf(&b, "_Language: %s_\n\n", d.Language)
	}

	for i, e := range d.Entries {
		heading := e.Location
		if heading == "" {
			heading = fmt.Sprintf("Event %d", e.EventID)
		}
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, heading)
		for _, para := range strings.Split(strings.TrimSpace(e.Text), "\n") {
			if para = strings.TrimSpace(para); para != "" {
				fmt.Fprintf(&b, "%s\n\n", para)
			}
		}
		fmt.Fprintf(&b, "- Physical %d, Mental %d\n", e.Stats.Physical, e.Stats.Mental)
		if len(e.Inventory.Items) > 0 {
			fmt.Fprintf(&b, "- Items: %s\n", strings.Join(e.Inventory.Items, ", "))
		}
		if len(e.Inventory.Tapes) > 0 {
			fmt.Fprintf(&b, "- Tapes: %s\n", strings.Join(e.Inventory.Tapes, ", "))
		}
		b.WriteString("\n")
		if e.ChoiceTaken != "" {
			fmt.Fprintf(&b, "> **%s**\n\n", e.ChoiceTaken)
		}
	}

	if d.Ended {
		b.WriteString("---\n\n*The End*\n")
	}
	return b.String()
}

var page = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the document as a standalone HTML page.
func HTML(d Document) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(d)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	lang := d.Language
	if lang == "" {
		lang = "en"
	}
	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Lang  string
		Title string
		Body  template.HTML
	}{lang, d.Title(), template.HTML(body.String())})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Render writes the document to w in the given format.
func Render(w io.Writer, d Document, format Format) error {
	var s string
	switch format {
	case FormatMarkdown:
		s = Markdown(d)
	case FormatHTML:
		var err error
		if s, err = HTML(d); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown transcript format %q", format)
	}
	_, err := io.WriteString(w, s)
	return err
}
