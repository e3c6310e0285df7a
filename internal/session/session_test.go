package session_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/QRKeeper/internal/export"
	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/payload"
	"github.com/atinyakov/QRKeeper/internal/render"
	"github.com/atinyakov/QRKeeper/internal/service"
	"github.com/atinyakov/QRKeeper/internal/session"
	"github.com/atinyakov/QRKeeper/internal/storage"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	kv := storage.NewFileKV(filepath.Join(t.TempDir(), "storage.json"))
	history := service.NewHistoryService(storage.NewStore(kv, nil), payload.NewCodec(nil), nil)
	return session.New(history, export.New(render.New(nil)), nil)
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNew_Defaults(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, models.TypeURL, s.Active())
	assert.Equal(t, models.URL{}, s.Record())
	assert.Equal(t, models.DefaultRenderSettings(), s.Settings())
	_, ok := s.Payload()
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Select(models.TypeWiFi))
	assert.Equal(t, models.TypeWiFi, s.Active())
	assert.Equal(t, models.WiFi{Security: models.SecurityWPA}, s.Record())

	assert.ErrorIs(t, s.Select("fax"), models.ErrUnknownType)
	assert.Equal(t, models.TypeWiFi, s.Active())
}

func TestGenerate_RequiredFieldRendersNothing(t *testing.T) {
	s := newSession(t)
	_, err := s.Generate()
	assert.ErrorIs(t, err, models.ErrRequiredField)

	_, ok, err := s.Export(export.FormatPNG)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Save(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrNotGenerated)
}

func TestGenerate_KeepsPreviousOnFailure(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.SetRecord(models.Phone{Number: "+123"}))
	p, err := s.Generate()
	require.NoError(t, err)
	assert.Equal(t, "tel:+123", p)

	require.NoError(t, s.SetRecord(models.Phone{}))
	_, err = s.Generate()
	require.Error(t, err)

	got, ok := s.Payload()
	assert.True(t, ok)
	assert.Equal(t, "tel:+123", got)
}

func TestGenerate_PayloadTooLong(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.SetRecord(models.Text{Text: strings.Repeat("a", 5000)}))

	_, err := s.Generate()
	assert.ErrorIs(t, err, render.ErrPayloadTooLong)

	_, ok := s.Payload()
	assert.False(t, ok)
	_, err = s.Save(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrNotGenerated)
}

func TestExport(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.SetRecord(models.URL{URL: "https://example.com"}))
	_, err := s.Generate()
	require.NoError(t, err)

	f, ok, err := s.Export(export.FormatPNG)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "qrcode-url-https---example-com.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)
	assert.True(t, bytes.HasPrefix(f.Data, []byte("\x89PNG")))

	f, ok, err = s.Export(export.FormatSVG)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(f.Data), `<?xml version="1.0" standalone="no"?>`+"\r\n<svg "))
	assert.Contains(t, string(f.Data), `xmlns="http://www.w3.org/2000/svg"`)
}

func TestSetLogo(t *testing.T) {
	s := newSession(t)
	logo := pngLogo(t)

	require.NoError(t, s.SetLogo(bytes.NewReader(logo)))
	assert.Equal(t, logo, s.Settings().LogoImage)

	// Changing colors keeps the logo.
	s.SetSettings(models.RenderSettings{ForegroundColor: "#FF0000", Size: 1000})
	assert.Equal(t, logo, s.Settings().LogoImage)
	assert.Equal(t, models.MaxSize, s.Settings().Size)

	err := s.SetLogo(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, render.ErrInvalidLogo)
	assert.Equal(t, logo, s.Settings().LogoImage)

	s.RemoveLogo()
	assert.Nil(t, s.Settings().LogoImage)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestSetLogo_ReadError(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.SetLogo(bytes.NewReader(pngLogo(t))))
	before := s.Settings().LogoImage

	assert.Error(t, s.SetLogo(failingReader{}))
	assert.Equal(t, before, s.Settings().LogoImage)
}

func TestSaveAndLoad_ClearsOtherVariants(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	wifi := models.WiFi{SSID: "Cafe", Password: "latte", Security: models.SecurityWEP}
	require.NoError(t, s.SetRecord(wifi))
	s.SetSettings(models.RenderSettings{ForegroundColor: "#123456", ErrorCorrectionLevel: models.LevelL})
	_, err := s.Generate()
	require.NoError(t, err)
	entry, err := s.Save(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", entry.Title)

	// Start editing something else.
	require.NoError(t, s.SetRecord(models.Email{Address: "x@y.z", Subject: "draft"}))
	s.SetSettings(models.DefaultRenderSettings())

	require.NoError(t, s.Load(ctx, entry.ID))
	assert.Equal(t, models.TypeWiFi, s.Active())
	assert.Equal(t, wifi, s.Record())
	assert.Equal(t, "#123456", s.Settings().ForegroundColor)
	assert.Equal(t, models.LevelL, s.Settings().ErrorCorrectionLevel)

	require.NoError(t, s.Select(models.TypeEmail))
	assert.Equal(t, models.Email{}, s.Record())

	p, ok := s.Payload()
	assert.True(t, ok)
	assert.Equal(t, "WIFI:T:WEP;S:Cafe;P:latte;H:false;;", p)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, entry.ID))
	assert.ErrorIs(t, s.Load(ctx, entry.ID), service.ErrEntryNotFound)
}
