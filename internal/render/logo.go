package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	// Logo formats accepted for upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrInvalidLogo is returned for logo data that is not a decodable image.
var ErrInvalidLogo = errors.New("invalid logo image")

// LogoBytes returns raw image bytes from either raw bytes or a data: URL.
func LogoBytes(data []byte) ([]byte, error) {
	rest, ok := strings.CutPrefix(string(data), "data:")
	if !ok {
		return data, nil
	}
	meta, body, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("data url without payload: %w", ErrInvalidLogo)
	}
	if strings.HasSuffix(meta, ";base64") {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("data url: %w", errors.Join(ErrInvalidLogo, err))
		}
		return raw, nil
	}
	raw, err := url.PathUnescape(body)
	if err != nil {
		return nil, fmt.Errorf("data url: %w", errors.Join(ErrInvalidLogo, err))
	}
	return []byte(raw), nil
}

// DecodeLogo decodes a PNG, JPEG or GIF logo given as bytes or a data: URL.
// It also returns the format name.
func DecodeLogo(data []byte) (image.Image, string, error) {
	raw, err := LogoBytes(data)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode logo: %w", errors.Join(ErrInvalidLogo, err))
	}
	return img, format, nil
}
