// Package session holds the editing state of a single user: the active
// record variant, its field values, render settings, the logo and the last
// generated code.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/export"
	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/payload"
	"github.com/atinyakov/QRKeeper/internal/render"
)

// History is the subset of the history service a session needs.
type History interface {
	Save(ctx context.Context, rec models.Record, settings models.RenderSettings, title string) (models.SavedEntry, error)
	Load(ctx context.Context, id string) (models.Record, models.RenderSettings, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.SavedEntry, error)
}

// Exporter renders a record into a downloadable file.
type Exporter interface {
	Export(rec models.Record, s models.RenderSettings, f export.Format) (export.File, error)
}

type generated struct {
	record   models.Record
	settings models.RenderSettings
	payload  string
}

// Session is not safe for concurrent use.
type Session struct {
	history  History
	exporter Exporter
	log      *zap.Logger

	active   models.ContentType
	forms    map[models.ContentType]models.Record
	settings models.RenderSettings
	last     *generated
}

// New returns a session showing an empty URL form with default settings.
func New(history History, exporter Exporter, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{history: history, exporter: exporter, log: log}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.active = models.TypeURL
	s.forms = make(map[models.ContentType]models.Record, len(models.ContentTypes))
	for _, t := range models.ContentTypes {
		s.forms[t], _ = models.NewRecord(t)
	}
	s.settings = models.DefaultRenderSettings()
	s.last = nil
}

// Active returns the tag of the variant being edited.
func (s *Session) Active() models.ContentType { return s.active }

// Record returns the field values of the active variant.
func (s *Session) Record() models.Record { return s.forms[s.active] }

// Settings returns the current render settings.
func (s *Session) Settings() models.RenderSettings { return s.settings }

// Payload returns the payload of the last successful Generate.
func (s *Session) Payload() (string, bool) {
	if s.last == nil {
		return "", false
	}
	return s.last.payload, true
}

// Select switches to variant t with empty fields.
func (s *Session) Select(t models.ContentType) error {
	rec, err := models.NewRecord(t)
	if err != nil {
		return err
	}
	s.forms[t] = rec
	s.active = t
	return nil
}

// SetRecord replaces the field values of rec's variant and makes it active.
func (s *Session) SetRecord(rec models.Record) error {
	if rec == nil || !rec.Type().Valid() {
		return models.ErrUnknownType
	}
	s.forms[rec.Type()] = rec
	s.active = rec.Type()
	return nil
}

// SetSettings replaces the render settings, keeping the current logo.
func (s *Session) SetSettings(settings models.RenderSettings) {
	logo := s.settings.LogoImage
	s.settings = settings.Normalize()
	s.settings.LogoImage = logo
}

// SetLogo reads an image from r and uses it as the logo. The logo changes
// only once r is fully read and decodes as an image.
func (s *Session) SetLogo(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read logo: %w", err)
	}
	raw, err := render.LogoBytes(data)
	if err != nil {
		return err
	}
	_, format, err := render.DecodeLogo(raw)
	if err != nil {
		return err
	}
	s.settings.LogoImage = raw
	s.log.Debug("logo set", zap.String("format", format), zap.Int("bytes", len(raw)))
	return nil
}

// RemoveLogo clears the logo.
func (s *Session) RemoveLogo() {
	s.settings.LogoImage = nil
}

// Generate validates the active record and checks its payload fits in a QR
// code. On success it remembers the record with the current settings as the
// generated code; on failure the previously generated code is kept.
func (s *Session) Generate() (string, error) {
	rec := s.Record()
	if err := payload.Validate(rec); err != nil {
		return "", err
	}
	p := payload.Encode(rec)
	if err := render.Encodable(p, s.settings.ErrorCorrectionLevel); err != nil {
		return "", err
	}
	s.last = &generated{record: rec, settings: s.settings, payload: p}
	return p, nil
}

// Export renders the generated code. It reports false when nothing has been
// generated yet.
func (s *Session) Export(f export.Format) (export.File, bool, error) {
	if s.last == nil {
		return export.File{}, false, nil
	}
	file, err := s.exporter.Export(s.last.record, s.last.settings, f)
	if err != nil {
		return export.File{}, true, err
	}
	return file, true, nil
}

// ErrNotGenerated is returned by Save before any code was generated.
var ErrNotGenerated = errors.New("no qr code generated")

// Save stores the generated code in the history.
func (s *Session) Save(ctx context.Context, title string) (models.SavedEntry, error) {
	if s.last == nil {
		return models.SavedEntry{}, ErrNotGenerated
	}
	return s.history.Save(ctx, s.last.record, s.last.settings, title)
}

// Load resets the session, fills the entry's variant from its payload,
// switches to that variant and marks it generated.
func (s *Session) Load(ctx context.Context, id string) error {
	rec, settings, err := s.history.Load(ctx, id)
	if err != nil {
		return err
	}
	s.reset()
	s.forms[rec.Type()] = rec
	s.settings = settings.Normalize()
	s.active = rec.Type()
	s.last = &generated{record: rec, settings: s.settings, payload: payload.Encode(rec)}
	return nil
}

// Delete removes an entry from the history.
func (s *Session) Delete(ctx context.Context, id string) error {
	return s.history.Delete(ctx, id)
}

// List returns the saved entries.
func (s *Session) List(ctx context.Context) ([]models.SavedEntry, error) {
	return s.history.List(ctx)
}
