package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"meme-journalist/internal/frontmatter"
	"meme-journalist/internal/model"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Item is one rendered meme block.
type Item struct {
	Rank          int
	Title         string
	ImageURL      string
	SourcePageURL string
	Community     string
	Hotness       float64
	Score         int
	Comments      int
}

// Data is the full template input.
type Data struct {
	Title       string
	Tagline     string
	Preface     template.HTML
	Summary     template.HTML
	Postscript  template.HTML
	Items       []Item
	GeneratedAt string
}

// Options carries the configurable text around the meme list.
// Empty fields fall back to the template frontmatter.
type Options struct {
	Title      string
	Subject    string
	Preface    string // markdown
	Postscript string // markdown
	Summary    string // markdown, e.g. an AI intro
}

//go:embed digest.html.tmpl
var digestTpl string

var (
	defaultTemplate = mustParse("digest", digestTpl)
	md              = goldmark.New()
	policy          = bluemonday.UGCPolicy()
)

// Template is an HTML body preceded by YAML frontmatter that supplies the
// default subject, title, tagline and postscript.
type Template struct {
	meta frontmatter.Document
	html *template.Template
}

// DefaultTemplate returns the built-in digest layout.
func DefaultTemplate() *Template { return defaultTemplate }

// LoadTemplate reads a custom layout from disk.
func LoadTemplate(path string) (*Template, error) {
	doc, err := frontmatter.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return compile(filepath.Base(path), doc)
}

// ParseTemplate compiles a layout held in memory.
func ParseTemplate(name, src string) (*Template, error) {
	doc, err := frontmatter.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return compile(name, doc)
}

func compile(name string, doc frontmatter.Document) (*Template, error) {
	html, err := template.New(name).Parse(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("compile template %s: %w", name, err)
	}
	return &Template{meta: doc, html: html}, nil
}

func mustParse(name, src string) *Template {
	t, err := ParseTemplate(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// Meta exposes the frontmatter keys of the layout.
func (t *Template) Meta() map[string]any { return t.meta.Meta }

// Build maps a digest into template data. Ranks are 1-based in digest order.
func (t *Template) Build(memes model.Digest, now time.Time, opts Options) Data {
	n := len(memes)
	d := Data{
		Title:       ExpandVars(firstNonEmpty(opts.Title, t.meta.String("title")), now, n),
		Tagline:     t.meta.String("tagline"),
		Preface:     Markdown(ExpandVars(opts.Preface, now, n)),
		Summary:     Markdown(opts.Summary),
		Postscript:  Markdown(ExpandVars(firstNonEmpty(opts.Postscript, t.meta.String("postscript")), now, n)),
		Items:       make([]Item, 0, n),
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
	}
	for i, m := range memes {
		d.Items = append(d.Items, Item{
			Rank:          i + 1,
			Title:         m.Title,
			ImageURL:      m.ImageURL,
			SourcePageURL: m.SourcePageURL,
			Community:     m.Community,
			Hotness:       m.HotnessScore,
			Score:         m.Score,
			Comments:      m.CommentCount,
		})
	}
	return d
}

// Subject returns the email subject for a digest sent at now. A subject
// without a {.CurrentDate} placeholder gets the date appended.
func (t *Template) Subject(override string, now time.Time, count int) string {
	subject := strings.TrimSpace(firstNonEmpty(override, t.meta.String("subject")))
	if !strings.Contains(subject, "{.CurrentDate}") {
		if subject == "" {
			subject = "{.CurrentDate}"
		} else {
			subject += " - {.CurrentDate}"
		}
	}
	return ExpandVars(subject, now, count)
}

// Render executes the HTML template. All text fields are escaped by
// html/template; markdown fields were sanitized by Markdown.
func (t *Template) Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := t.html.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Build renders data with the built-in layout.
func Build(memes model.Digest, now time.Time, opts Options) Data {
	return defaultTemplate.Build(memes, now, opts)
}

// Subject uses the built-in layout's subject line.
func Subject(override string, now time.Time, count int) string {
	return defaultTemplate.Subject(override, now, count)
}

// Render executes the built-in layout.
func Render(d Data) (string, error) {
	return defaultTemplate.Render(d)
}

// Markdown converts user-supplied markdown into sanitized HTML.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(strings.TrimSpace(policy.Sanitize(buf.String())))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
