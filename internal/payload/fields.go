package payload

import (
	"fmt"
	"strings"

	"github.com/atinyakov/QRKeeper/internal/models"
)

// Validate checks the variant's required fields. The returned error wraps
// models.ErrRequiredField and names the first empty field.
func Validate(r models.Record) error {
	switch v := r.(type) {
	case models.URL:
		return required("url", v.URL)
	case models.Text:
		return required("text", v.Text)
	case models.Email:
		return required("address", v.Address)
	case models.Phone:
		return required("number", v.Number)
	case models.SMS:
		return required("number", v.Number)
	case models.WiFi:
		if err := required("ssid", v.SSID); err != nil {
			return err
		}
		if v.Security != models.SecurityNone {
			return required("password", v.Password)
		}
		return nil
	case models.Contact:
		if err := required("firstName", v.FirstName); err != nil {
			return err
		}
		return required("lastName", v.LastName)
	}
	return models.ErrUnknownType
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", field, models.ErrRequiredField)
	}
	return nil
}

// PrimaryField returns the field that identifies r in filenames.
func PrimaryField(r models.Record) string {
	switch v := r.(type) {
	case models.URL:
		return v.URL
	case models.Text:
		return v.Text
	case models.Email:
		return v.Address
	case models.Phone:
		return v.Number
	case models.SMS:
		return v.Number
	case models.WiFi:
		return v.SSID
	case models.Contact:
		return v.FirstName + "-" + v.LastName
	}
	return ""
}

// DefaultTitle is the history title used when the user gives none.
func DefaultTitle(r models.Record) string {
	switch v := r.(type) {
	case models.URL:
		return truncate(v.URL, 30)
	case models.Text:
		return truncate(v.Text, 30)
	case models.Email:
		return v.Address
	case models.Phone:
		return v.Number
	case models.SMS:
		return v.Number
	case models.WiFi:
		return v.SSID
	case models.Contact:
		return v.FirstName + " " + v.LastName
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
