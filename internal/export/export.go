// Package export produces downloadable QR code files: PNG images and
// standalone SVG documents, named after the record they encode.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/payload"
)

// Format is an export file format.
type Format string

const (
	// FormatPNG is a raster PNG image.
	FormatPNG Format = "png"
	// FormatSVG is a standalone SVG document.
	FormatSVG Format = "svg"
)

// ErrUnknownFormat is returned for formats other than png and svg.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps "png" and "svg" (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml;charset=utf-8"
	}
	return "image/png"
}

// File is an export ready to be written or served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Renderer is the drawing capability export depends on.
type Renderer interface {
	PNG(payload string, s models.RenderSettings) ([]byte, error)
	SVG(payload string, s models.RenderSettings) (string, error)
}

// Exporter renders records into files.
type Exporter struct {
	renderer Renderer
}

// New returns an Exporter drawing with r.
func New(r Renderer) *Exporter {
	return &Exporter{renderer: r}
}

// Export encodes rec and renders it in format f.
func (e *Exporter) Export(rec models.Record, s models.RenderSettings, f Format) (File, error) {
	p := payload.Encode(rec)
	file := File{Name: Filename(rec, f), ContentType: f.ContentType()}
	switch f {
	case FormatPNG:
		data, err := e.renderer.PNG(p, s)
		if err != nil {
			return File{}, err
		}
		file.Data = data
	case FormatSVG:
		markup, err := e.renderer.SVG(p, s)
		if err != nil {
			return File{}, err
		}
		file.Data = []byte(SVGDocument(markup))
	default:
		return File{}, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
	}
	return file, nil
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Sanitize replaces every non-alphanumeric character with "-" and keeps at
// most the first 20 characters.
func Sanitize(s string) string {
	out := nonAlnum.ReplaceAllString(s, "-")
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// Filename returns "qrcode-{type}-{sanitized primary field}.{ext}".
func Filename(rec models.Record, f Format) string {
	return fmt.Sprintf("qrcode-%s-%s.%s", rec.Type(), Sanitize(payload.PrimaryField(rec)), f)
}

const (
	svgNamespace = `xmlns="http://www.w3.org/2000/svg"`
	xmlProlog    = `<?xml version="1.0" standalone="no"?>` + "\r\n"
)

var svgWithNamespace = regexp.MustCompile(`^<svg[^>]+xmlns="http://www\.w3\.org/2000/svg"`)

// SVGDocument turns inline markup into a standalone document: the SVG
// namespace is declared on the root element if missing and an XML prolog is
// prepended.
func SVGDocument(markup string) string {
	if !svgWithNamespace.MatchString(markup) {
		if rest, ok := strings.CutPrefix(markup, "<svg"); ok {
			markup = "<svg " + svgNamespace + rest
		}
	}
	return xmlProlog + markup
}
