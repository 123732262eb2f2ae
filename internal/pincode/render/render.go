// Package render turns widget views into HTML with pongo2 templates embedded
// in the binary. Every call renders a fresh tree from the view it is given;
// the renderer holds no per-widget state.
package render

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"github.com/flosch/pongo2/v6"

	"pincheck/internal/pincode/widget"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	pageTemplate     = "page.html"
	fragmentTemplate = "output.html"

	DefaultTitle      = "Pincode lookup"
	DefaultAssetsPath = "/static"
)

// AssetsFS exposes the stylesheet and script the page links to.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// Renderer is safe for concurrent use.
type Renderer struct {
	title    string
	assets   string
	page     *pongo2.Template
	fragment *pongo2.Template
}

// Option configures the Renderer.
type Option func(*Renderer)

func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithAssetsPath sets the URL prefix AssetsFS is served under.
func WithAssetsPath(path string) Option {
	return func(r *Renderer) {
		if path != "" {
			r.assets = path
		}
	}
}

// New parses the embedded templates once.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		title:  DefaultTitle,
		assets: DefaultAssetsPath,
	}
	for _, opt := range opts {
		opt(r)
	}

	templates, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: templates fs: %w", err)
	}
	set := pongo2.NewSet("pincheck", pongo2.NewFSLoader(templates))

	if r.page, err = set.FromFile(pageTemplate); err != nil {
		return nil, fmt.Errorf("render: parse %s: %w", pageTemplate, err)
	}
	if r.fragment, err = set.FromFile(fragmentTemplate); err != nil {
		return nil, fmt.Errorf("render: parse %s: %w", fragmentTemplate, err)
	}
	return r, nil
}

// Page writes the whole document: input form, error area, status area and results.
func (r *Renderer) Page(w io.Writer, view widget.View) error {
	return r.execute(r.page, pageTemplate, w, view)
}

// Fragment writes only the status and results areas, for in-place updates.
func (r *Renderer) Fragment(w io.Writer, view widget.View) error {
	return r.execute(r.fragment, fragmentTemplate, w, view)
}

func (r *Renderer) execute(tmpl *pongo2.Template, name string, w io.Writer, view widget.View) error {
	ctx := pongo2.Context{
		"title":  r.title,
		"assets": r.assets,
		"view":   view,
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("render: execute %s: %w", name, err)
	}
	return nil
}
