// Package payload converts content records into the text payloads that are
// rendered as QR codes, and parses saved payloads back into records.
package payload

import (
	"net/url"
	"strings"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// componentReplacer turns url.QueryEscape output into URI-component form:
// spaces as %20 and the sub-delimiters !'()* left bare.
var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escapeComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

// Encode returns the canonical payload for r. It never fails: empty optional
// fields are simply left out or emitted empty, depending on the variant.
func Encode(r models.Record) string {
	switch v := r.(type) {
	case models.URL:
		return v.URL
	case models.Text:
		return v.Text
	case models.Email:
		return encodeEmail(v)
	case models.Phone:
		return "tel:" + v.Number
	case models.SMS:
		s := "sms:" + v.Number
		if v.Message != "" {
			s += "?body=" + escapeComponent(v.Message)
		}
		return s
	case models.WiFi:
		return encodeWiFi(v)
	case models.Contact:
		return encodeContact(v)
	}
	return ""
}

func encodeEmail(e models.Email) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(e.Address)
	sep := "?"
	if e.Subject != "" {
		b.WriteString(sep + "subject=" + escapeComponent(e.Subject))
		sep = "&"
	}
	if e.Body != "" {
		b.WriteString(sep + "body=" + escapeComponent(e.Body))
	}
	return b.String()
}

func encodeWiFi(w models.WiFi) string {
	security := w.Security
	if security == "" {
		security = models.SecurityWPA
	}
	hidden := "false"
	if w.Hidden {
		hidden = "true"
	}
	return "WIFI:T:" + string(security) + ";S:" + w.SSID + ";P:" + w.Password + ";H:" + hidden + ";;"
}

func encodeContact(c models.Contact) string {
	return strings.Join([]string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + c.LastName + ";" + c.FirstName + ";;;",
		"FN:" + c.FirstName + " " + c.LastName,
		"ORG:" + c.Org,
		"TITLE:" + c.Title,
		"TEL:" + c.Phone,
		"EMAIL:" + c.Email,
		"END:VCARD",
	}, "\n")
}
