package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/QRKeeper/internal/models"
)

func solidPNG(t *testing.T, c color.Color, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, A: 0xff}, c)

	c, err = ParseColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, c)

	for _, bad := range []string{"", "000000", "#12345", "#GGGGGG"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestPNG_SizeAndColors(t *testing.T) {
	r := New(nil)
	s := models.RenderSettings{ForegroundColor: "#FF0000", BackgroundColor: "#00FF00", Size: 200, ErrorCorrectionLevel: models.LevelM}

	out, err := r.PNG("https://example.com", s)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	// The quiet zone corner is background.
	rr, gg, bb, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0, 0xffff, 0}, [3]uint32{rr, gg, bb})
}

func TestPNG_EmptyPayload(t *testing.T) {
	_, err := New(nil).PNG("", models.DefaultRenderSettings())
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestPNG_BadColor(t *testing.T) {
	s := models.DefaultRenderSettings()
	s.ForegroundColor = "red"
	_, err := New(nil).PNG("x", s)
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestImage_LogoCarvesCenter(t *testing.T) {
	logo := solidPNG(t, color.RGBA{B: 0xff, A: 0xff}, 16)
	s := models.DefaultRenderSettings()
	s.LogoImage = logo

	img, err := New(nil).Image("https://example.com/with/logo", s)
	require.NoError(t, err)

	b := img.Bounds()
	center := img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, color.RGBAModel.Convert(center))
}

func TestImage_BadLogoIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := models.DefaultRenderSettings()
	s.LogoImage = []byte("not an image")

	_, err := New(zap.New(core)).Image("hello", s)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("skipping undecodable logo").Len())
}

func TestDecodeLogo_DataURL(t *testing.T) {
	raw := solidPNG(t, color.White, 4)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	img, format, err := DecodeLogo([]byte(dataURL))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, _, err = DecodeLogo([]byte("data:image/png;base64"))
	assert.ErrorIs(t, err, ErrInvalidLogo)

	_, _, err = DecodeLogo([]byte("garbage"))
	assert.ErrorIs(t, err, ErrInvalidLogo)
}

func TestSVG(t *testing.T) {
	s := models.RenderSettings{ForegroundColor: "#112233", BackgroundColor: "#fff", Size: 256, ErrorCorrectionLevel: models.LevelL}
	out, err := New(nil).SVG("hello", s)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<svg height="256" width="256"`))
	assert.NotContains(t, out, "xmlns")
	assert.Contains(t, out, `fill="#112233"`)
	assert.Contains(t, out, `fill="#FFFFFF"`)
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.NotContains(t, out, "<image")
}

func TestSVG_WithLogo(t *testing.T) {
	s := models.DefaultRenderSettings()
	s.LogoImage = solidPNG(t, color.Black, 4)
	out, err := New(nil).SVG("hello", s)
	require.NoError(t, err)
	assert.Contains(t, out, `<image href="data:image/png;base64,`)
}

func TestSVG_BadLogoIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := models.DefaultRenderSettings()
	s.LogoImage = []byte("not an image")

	withBadLogo, err := New(zap.New(core)).SVG("hello", s)
	require.NoError(t, err)
	assert.NotContains(t, withBadLogo, "<image")
	assert.Equal(t, 1, logs.FilterMessage("skipping undecodable logo").Len())

	s.LogoImage = nil
	plain, err := New(nil).SVG("hello", s)
	require.NoError(t, err)
	assert.Equal(t, plain, withBadLogo, "no modules carved for a dropped logo")
}

func TestPayloadTooLong(t *testing.T) {
	long := strings.Repeat("a", 5000)

	_, err := New(nil).PNG(long, models.DefaultRenderSettings())
	assert.ErrorIs(t, err, ErrPayloadTooLong)

	_, err = New(nil).SVG(long, models.DefaultRenderSettings())
	assert.ErrorIs(t, err, ErrPayloadTooLong)

	assert.ErrorIs(t, Encodable(long, models.LevelL), ErrPayloadTooLong)
	assert.ErrorIs(t, Encodable("", models.LevelL), ErrEmptyPayload)
	assert.NoError(t, Encodable("hello", ""))
}
