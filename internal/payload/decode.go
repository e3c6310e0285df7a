package payload

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// Codec decodes saved payloads on a best-effort basis, logging whatever it
// could not parse.
type Codec struct {
	log *zap.Logger
}

// NewCodec returns a Codec that reports parse problems to log.
// A nil log discards them.
func NewCodec(log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{log: log}
}

// Encode is a convenience wrapper around the package-level Encode.
func (c *Codec) Encode(r models.Record) string {
	return Encode(r)
}

// Decode parses payload as a record of type t. Malformed parts fall back to
// the variant's defaults while the rest is kept. The only error is
// models.ErrUnknownType for an unknown tag.
func (c *Codec) Decode(t models.ContentType, payload string) (models.Record, error) {
	switch t {
	case models.TypeURL:
		return models.URL{URL: payload}, nil
	case models.TypeText:
		return models.Text{Text: payload}, nil
	case models.TypeEmail:
		return c.decodeEmail(payload), nil
	case models.TypePhone:
		return models.Phone{Number: strings.TrimPrefix(payload, "tel:")}, nil
	case models.TypeSMS:
		return c.decodeSMS(payload), nil
	case models.TypeWiFi:
		return c.decodeWiFi(payload), nil
	case models.TypeContact:
		return c.decodeContact(payload), nil
	}
	return nil, fmt.Errorf("decode %q: %w", t, models.ErrUnknownType)
}

func (c *Codec) decodeEmail(p string) models.Email {
	var e models.Email
	rest, ok := strings.CutPrefix(p, "mailto:")
	if !ok {
		c.log.Warn("email payload without mailto: prefix", zap.String("payload", p))
		return e
	}
	addr, query, hasQuery := strings.Cut(rest, "?")
	e.Address = addr
	if hasQuery {
		params := c.parseQuery(models.TypeEmail, query)
		e.Subject = params.Get("subject")
		e.Body = params.Get("body")
	}
	return e
}

func (c *Codec) decodeSMS(p string) models.SMS {
	var s models.SMS
	rest, ok := strings.CutPrefix(p, "sms:")
	if !ok {
		c.log.Warn("sms payload without sms: prefix", zap.String("payload", p))
		return s
	}
	number, query, hasQuery := strings.Cut(rest, "?")
	s.Number = number
	if hasQuery {
		s.Message = c.parseQuery(models.TypeSMS, query).Get("body")
	}
	return s
}

// parseQuery keeps every parameter that decoded cleanly; url.ParseQuery
// skips the broken ones and reports the first failure.
func (c *Codec) parseQuery(t models.ContentType, query string) url.Values {
	values, err := url.ParseQuery(query)
	if err != nil {
		c.log.Warn("malformed query in payload",
			zap.String("type", string(t)),
			zap.String("query", query),
			zap.Error(err),
		)
	}
	return values
}

var wifiFields = map[string]*regexp.Regexp{
	"T": regexp.MustCompile(`(?:^WIFI:|;)T:([^;]*);`),
	"S": regexp.MustCompile(`(?:^WIFI:|;)S:([^;]*);`),
	"P": regexp.MustCompile(`(?:^WIFI:|;)P:([^;]*);`),
	"H": regexp.MustCompile(`(?:^WIFI:|;)H:([^;]*);`),
}

func wifiField(p, key string) (string, bool) {
	m := wifiFields[key].FindStringSubmatch(p)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (c *Codec) decodeWiFi(p string) models.WiFi {
	w := models.WiFi{Security: models.SecurityWPA}
	if !strings.HasPrefix(p, "WIFI:") {
		c.log.Warn("wifi payload without WIFI: prefix", zap.String("payload", p))
		return w
	}
	if v, ok := wifiField(p, "T"); ok {
		switch sec := models.WiFiSecurity(v); {
		case sec.Valid():
			w.Security = sec
		case v != "":
			c.log.Warn("unknown wifi security type", zap.String("security", v))
		}
	}
	if v, ok := wifiField(p, "S"); ok {
		w.SSID = v
	}
	if v, ok := wifiField(p, "P"); ok {
		w.Password = v
	}
	if v, ok := wifiField(p, "H"); ok {
		w.Hidden = v == "true"
	}
	return w
}

func (c *Codec) decodeContact(p string) models.Contact {
	var ct models.Contact
	lines := strings.Split(strings.ReplaceAll(p, "\r\n", "\n"), "\n")
	find := func(prefix string) (string, bool) {
		for _, line := range lines {
			if v, ok := strings.CutPrefix(line, prefix); ok {
				return v, true
			}
		}
		return "", false
	}

	if n, ok := find("N:"); ok {
		parts := strings.Split(n, ";")
		ct.LastName = parts[0]
		if len(parts) > 1 {
			ct.FirstName = parts[1]
		} else {
			c.log.Warn("vcard name line has no given name", zap.String("line", "N:"+n))
		}
	}
	if v, ok := find("ORG:"); ok {
		ct.Org = v
	}
	if v, ok := find("TITLE:"); ok {
		ct.Title = v
	}
	if v, ok := find("TEL:"); ok {
		ct.Phone = v
	}
	if v, ok := find("EMAIL:"); ok {
		ct.Email = v
	}
	return ct
}
