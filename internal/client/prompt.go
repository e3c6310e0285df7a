// Package client implements the interactive terminal front end: field
// prompts for every record variant and the command shell driving a session.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/render"
)

// ErrInputClosed is returned when input ends in the middle of a prompt.
var ErrInputClosed = errors.New("input closed")

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a Prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prints prompt and returns the next input line, trimmed.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// withDefault asks for a value, returning def on an empty answer.
func (p *Prompter) withDefault(label, def string) (string, error) {
	v, err := p.Line(fmt.Sprintf("%s [%s]: ", label, def))
	if err != nil || v == "" {
		return def, err
	}
	return v, nil
}

// Record asks for the fields of variant t.
func (p *Prompter) Record(t models.ContentType) (models.Record, error) {
	var (
		fields []string
		labels []string
	)
	switch t {
	case models.TypeURL:
		labels = []string{"URL"}
	case models.TypeText:
		labels = []string{"Text"}
	case models.TypeEmail:
		labels = []string{"Email address", "Subject", "Body"}
	case models.TypePhone:
		labels = []string{"Phone number"}
	case models.TypeSMS:
		labels = []string{"Phone number", "Message"}
	case models.TypeWiFi:
		return p.wifi()
	case models.TypeContact:
		labels = []string{"First name", "Last name", "Phone", "Email", "Organization", "Job title"}
	default:
		return nil, fmt.Errorf("%q: %w", t, models.ErrUnknownType)
	}

	for _, l := range labels {
		v, err := p.Line(l + ": ")
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
	}

	switch t {
	case models.TypeURL:
		return models.URL{URL: fields[0]}, nil
	case models.TypeText:
		return models.Text{Text: fields[0]}, nil
	case models.TypeEmail:
		return models.Email{Address: fields[0], Subject: fields[1], Body: fields[2]}, nil
	case models.TypePhone:
		return models.Phone{Number: fields[0]}, nil
	case models.TypeSMS:
		return models.SMS{Number: fields[0], Message: fields[1]}, nil
	default:
		return models.Contact{
			FirstName: fields[0],
			LastName:  fields[1],
			Phone:     fields[2],
			Email:     fields[3],
			Org:       fields[4],
			Title:     fields[5],
		}, nil
	}
}

func (p *Prompter) wifi() (models.Record, error) {
	w := models.WiFi{Security: models.SecurityWPA}
	var err error
	if w.SSID, err = p.Line("Network name (SSID): "); err != nil {
		return nil, err
	}
	sec, err := p.withDefault("Security (WPA/WEP/nopass)", string(models.SecurityWPA))
	if err != nil {
		return nil, err
	}
	w.Security = models.WiFiSecurity(sec)
	if !w.Security.Valid() {
		return nil, fmt.Errorf("wifi security %q: %w", sec, models.ErrUnknownType)
	}
	if w.Security != models.SecurityNone {
		if w.Password, err = p.Line("Password: "); err != nil {
			return nil, err
		}
	}
	hidden, err := p.withDefault("Hidden network (y/n)", "n")
	if err != nil {
		return nil, err
	}
	w.Hidden = strings.HasPrefix(strings.ToLower(hidden), "y")
	return w, nil
}

// Settings asks for render settings, keeping cur's value for every empty
// answer. The logo is left untouched.
func (p *Prompter) Settings(cur models.RenderSettings) (models.RenderSettings, error) {
	next := cur
	var err error

	for _, c := range []struct {
		label string
		field *string
	}{
		{"Foreground color", &next.ForegroundColor},
		{"Background color", &next.BackgroundColor},
	} {
		if *c.field, err = p.withDefault(c.label, *c.field); err != nil {
			return cur, err
		}
		if _, err := render.ParseColor(*c.field); err != nil {
			return cur, fmt.Errorf("%s: %w", strings.ToLower(c.label), err)
		}
	}

	size, err := p.withDefault(fmt.Sprintf("Size in pixels (%d-%d)", models.MinSize, models.MaxSize), strconv.Itoa(cur.Size))
	if err != nil {
		return cur, err
	}
	if next.Size, err = strconv.Atoi(size); err != nil {
		return cur, fmt.Errorf("size: %w", err)
	}

	level, err := p.withDefault("Error correction (L/M/Q/H)", string(cur.ErrorCorrectionLevel))
	if err != nil {
		return cur, err
	}
	next.ErrorCorrectionLevel = models.ErrorCorrectionLevel(strings.ToUpper(level))
	if !next.ErrorCorrectionLevel.Valid() {
		return cur, fmt.Errorf("unknown error correction level %q", level)
	}

	return next.Normalize(), nil
}
