// Package render draws payloads as QR codes using github.com/skip2/go-qrcode,
// as PNG images or inline SVG markup, with an optional centered logo.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// LogoFraction is the logo's share of the code's width and height.
const LogoFraction = 0.25

var (
	// ErrEmptyPayload is returned when there is nothing to encode.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrInvalidColor is returned for colors that are not #RGB or #RRGGBB.
	ErrInvalidColor = errors.New("invalid color")
	// ErrPayloadTooLong is returned when no QR version can hold the payload
	// at the requested error-correction level.
	ErrPayloadTooLong = errors.New("payload too long for a qr code")
)

// Renderer turns payloads into images.
type Renderer struct {
	log *zap.Logger
}

// New returns a Renderer. A nil log discards warnings.
func New(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

func recoveryLevel(l models.ErrorCorrectionLevel) qrcode.RecoveryLevel {
	switch l {
	case models.LevelL:
		return qrcode.Low
	case models.LevelM:
		return qrcode.Medium
	case models.LevelQ:
		return qrcode.High
	default:
		return qrcode.Highest
	}
}

// ParseColor parses "#RGB" or "#RRGGBB".
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

type prepared struct {
	code     *qrcode.QRCode
	settings models.RenderSettings
	fg, bg   color.RGBA
}

func (r *Renderer) prepare(payload string, s models.RenderSettings) (*prepared, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	s = s.Normalize()
	fg, err := ParseColor(s.ForegroundColor)
	if err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	bg, err := ParseColor(s.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	code, err := encode(payload, s.ErrorCorrectionLevel)
	if err != nil {
		return nil, err
	}
	code.ForegroundColor = fg
	code.BackgroundColor = bg
	return &prepared{code: code, settings: s, fg: fg, bg: bg}, nil
}

func encode(payload string, level models.ErrorCorrectionLevel) (*qrcode.QRCode, error) {
	code, err := qrcode.New(payload, recoveryLevel(level))
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", errors.Join(ErrPayloadTooLong, err))
	}
	return code, nil
}

// Encodable reports whether payload fits in a QR code at level. An empty
// level means the default.
func Encodable(payload string, level models.ErrorCorrectionLevel) error {
	if payload == "" {
		return ErrEmptyPayload
	}
	if !level.Valid() {
		level = models.DefaultRenderSettings().ErrorCorrectionLevel
	}
	_, err := encode(payload, level)
	return err
}

// logo decodes the settings' logo. A logo that cannot be decoded is logged
// and left out of the render.
func (r *Renderer) logo(s models.RenderSettings) image.Image {
	if len(s.LogoImage) == 0 {
		return nil
	}
	img, _, err := DecodeLogo(s.LogoImage)
	if err != nil {
		r.log.Warn("skipping undecodable logo", zap.Error(err))
		return nil
	}
	return img
}

// Image renders payload as an RGBA image of s.Size pixels (or larger when the
// payload needs more modules than fit).
func (r *Renderer) Image(payload string, s models.RenderSettings) (image.Image, error) {
	p, err := r.prepare(payload, s)
	if err != nil {
		return nil, err
	}
	base := p.code.Image(p.settings.Size)
	bounds := base.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, base, bounds.Min, draw.Src)

	if logo := r.logo(p.settings); logo != nil {
		rect := logoRect(bounds)
		draw.Draw(dst, rect, image.NewUniform(p.bg), image.Point{}, draw.Src)
		draw.CatmullRom.Scale(dst, rect, logo, logo.Bounds(), draw.Over, nil)
	}
	return dst, nil
}

// PNG renders payload as PNG bytes.
func (r *Renderer) PNG(payload string, s models.RenderSettings) ([]byte, error) {
	img, err := r.Image(payload, s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func logoRect(b image.Rectangle) image.Rectangle {
	w := int(float64(b.Dx()) * LogoFraction)
	h := int(float64(b.Dy()) * LogoFraction)
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}
