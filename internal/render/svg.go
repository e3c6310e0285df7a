package render

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"math"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// SVG renders payload as inline <svg> markup sized s.Size pixels. The markup
// carries no namespace declaration; export adds it for standalone files.
func (r *Renderer) SVG(payload string, s models.RenderSettings) (string, error) {
	p, err := r.prepare(payload, s)
	if err != nil {
		return "", err
	}
	bitmap := p.code.Bitmap()
	n := len(bitmap)
	if n == 0 {
		return "", ErrEmptyPayload
	}

	var logoHref string
	if len(p.settings.LogoImage) > 0 {
		logoHref = r.logoHref(p.settings.LogoImage)
	}

	// Logo box in module units; modules it overlaps are carved out.
	lw := float64(n) * LogoFraction
	lx := (float64(n) - lw) / 2
	c0, c1 := int(math.Floor(lx)), int(math.Ceil(lx+lw))

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg height="%d" width="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		p.settings.Size, p.settings.Size, n, n)
	fmt.Fprintf(&sb, `<path fill="%s" d="M0,0 h%dv%dH0z"/>`, hexColor(p.bg), n, n)
	sb.WriteString(`<path fill="` + hexColor(p.fg) + `" d="`)
	for y, row := range bitmap {
		for x, black := range row {
			if !black {
				continue
			}
			if logoHref != "" && x >= c0 && x < c1 && y >= c0 && y < c1 {
				continue
			}
			fmt.Fprintf(&sb, "M%d %dh1v1H%dz", x, y, x)
		}
	}
	sb.WriteString(`"/>`)
	if logoHref != "" {
		fmt.Fprintf(&sb, `<image href="%s" x="%g" y="%g" width="%g" height="%g" preserveAspectRatio="none"/>`,
			logoHref, lx, lx, lw, lw)
	}
	sb.WriteString(`</svg>`)
	return sb.String(), nil
}

// logoHref returns the logo as a data URL, or "" when it is not a decodable
// image.
func (r *Renderer) logoHref(data []byte) string {
	raw, err := LogoBytes(data)
	if err == nil {
		_, _, err = DecodeLogo(raw)
	}
	if err != nil {
		r.log.Warn("skipping undecodable logo", zap.Error(err))
		return ""
	}
	return "data:" + http.DetectContentType(raw) + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
