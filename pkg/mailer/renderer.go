package mailer

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed layout.html
var layoutHTML string

var layout = template.Must(template.New("layout").Parse(layoutHTML))

// Frontmatter is the YAML header of a template.
type Frontmatter struct {
	Subject   string `yaml:"subject"`
	Preheader string `yaml:"preheader"`
}

type parsed struct {
	meta    Frontmatter
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// Renderer turns templates from an fs.FS into Emails. Parsed templates are
// kept for the life of the Renderer.
type Renderer struct {
	fsys   fs.FS
	md     goldmark.Markdown
	cfg    Config
	parsed map[string]*parsed
	mu     sync.Mutex
}

func NewRenderer(fsys fs.FS, cfg Config) *Renderer {
	return &Renderer{
		fsys:   fsys,
		cfg:    cfg,
		md:     goldmark.New(goldmark.WithExtensions(extension.Table, extension.Linkify)),
		parsed: map[string]*parsed{},
	}
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data any) (*Email, error) {
	p, err := r.load(name)
	if err != nil {
		return nil, err
	}

	var subject, text bytes.Buffer
	if err := p.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("%w: %s subject: %v", ErrRenderFailed, name, err)
	}
	if err := p.body.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("%w: %s body: %v", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(text.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %s markdown: %v", ErrRenderFailed, name, err)
	}

	var html bytes.Buffer
	err = layout.Execute(&html, map[string]any{
		"Product":   r.cfg.ProductName,
		"BaseURL":   r.cfg.BaseURL,
		"Preheader": p.meta.Preheader,
		"Content":   template.HTML(content.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s layout: %v", ErrRenderFailed, name, err)
	}

	return &Email{Subject: subject.String(), HTML: html.String(), Text: text.String()}, nil
}

func (r *Renderer) load(name string) (*parsed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parsed[name]; ok {
		return p, nil
	}

	raw, err := fs.ReadFile(r.fsys, path.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	meta, body, err := SplitFrontmatter(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if meta.Subject == "" {
		meta.Subject = r.cfg.FallbackSubject
	}

	p := &parsed{meta: meta}
	if p.subject, err = texttemplate.New(name + ":subject").Parse(meta.Subject); err != nil {
		return nil, fmt.Errorf("%w: %s subject: %v", ErrRenderFailed, name, err)
	}
	if p.body, err = texttemplate.New(name).Parse(body); err != nil {
		return nil, fmt.Errorf("%w: %s body: %v", ErrRenderFailed, name, err)
	}
	r.parsed[name] = p
	return p, nil
}

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// markdown body. Content without a leading delimiter is all body.
func SplitFrontmatter(raw []byte) (Frontmatter, string, error) {
	var meta Frontmatter
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))

	rest, ok := bytes.CutPrefix(raw, []byte("---\n"))
	if !ok {
		return meta, string(raw), nil
	}
	head, body, ok := bytes.Cut(rest, []byte("\n---"))
	if !ok {
		return meta, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}
	if err := yaml.Unmarshal(head, &meta); err != nil {
		return meta, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, string(body), nil
}
