package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/QRKeeper/internal/models"
)

type fakeRenderer struct {
	gotPayload string
	err        error
}

func (f *fakeRenderer) PNG(p string, _ models.RenderSettings) ([]byte, error) {
	f.gotPayload = p
	return []byte("png-bytes"), f.err
}

func (f *fakeRenderer) SVG(p string, _ models.RenderSettings) (string, error) {
	f.gotPayload = p
	return `<svg height="10" width="10"></svg>`, f.err
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a-b-c-d", Sanitize("a b/c?d"))
	assert.Equal(t, "https---example-com-", Sanitize("https://example.com/long/path"))
	assert.Len(t, Sanitize(strings.Repeat("x", 50)), 20)
	assert.Equal(t, "caf-", Sanitize("café"))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		rec  models.Record
		f    Format
		want string
	}{
		{models.URL{URL: "https://example.com"}, FormatPNG, "qrcode-url-https---example-com.png"},
		{models.Contact{FirstName: "Ada", LastName: "Lovelace"}, FormatSVG, "qrcode-vcard-Ada-Lovelace.svg"},
		{models.SMS{Number: "+1 555"}, FormatPNG, "qrcode-sms--1-555.png"},
		{models.WiFi{SSID: "Home Net"}, FormatPNG, "qrcode-wifi-Home-Net.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.rec, tt.f))
	}
}

func TestSVGDocument(t *testing.T) {
	doc := SVGDocument(`<svg height="1"><path/></svg>`)
	assert.Equal(t, "<?xml version=\"1.0\" standalone=\"no\"?>\r\n<svg xmlns=\"http://www.w3.org/2000/svg\" height=\"1\"><path/></svg>", doc)

	already := `<svg xmlns="http://www.w3.org/2000/svg" height="1"></svg>`
	doc = SVGDocument(already)
	assert.Equal(t, 1, strings.Count(doc, "xmlns="))
	assert.True(t, strings.HasSuffix(doc, already))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)

	_, err = ParseFormat("gif")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExporter_Export(t *testing.T) {
	r := &fakeRenderer{}
	e := New(r)
	rec := models.Phone{Number: "+123"}

	file, err := e.Export(rec, models.DefaultRenderSettings(), FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "tel:+123", r.gotPayload)
	assert.Equal(t, "qrcode-phone--123.png", file.Name)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, []byte("png-bytes"), file.Data)

	file, err = e.Export(rec, models.DefaultRenderSettings(), FormatSVG)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(file.Data), "<?xml"))
	assert.Contains(t, string(file.Data), `xmlns="http://www.w3.org/2000/svg"`)
	assert.Equal(t, "image/svg+xml;charset=utf-8", file.ContentType)

	_, err = e.Export(rec, models.DefaultRenderSettings(), "bmp")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	r.err = errors.New("boom")
	_, err = e.Export(rec, models.DefaultRenderSettings(), FormatPNG)
	assert.EqualError(t, err, "boom")
}
