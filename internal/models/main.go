// Package models defines the core data structures for QR content records,
// render settings and saved history entries.
package models

import (
	"errors"
	"time"
)

var (
	// ErrUnknownType is returned when a content type tag is not one of the known variants.
	ErrUnknownType = errors.New("unknown content type")
	// ErrRequiredField is returned when a variant's required field is empty.
	ErrRequiredField = errors.New("required field is empty")
)

// ContentType is the variant tag of a Record.
type ContentType string

const (
	// TypeURL tags a website address.
	TypeURL ContentType = "url"
	// TypeText tags free text.
	TypeText ContentType = "text"
	// TypeEmail tags a mailto: link.
	TypeEmail ContentType = "email"
	// TypePhone tags a tel: link.
	TypePhone ContentType = "phone"
	// TypeSMS tags an sms: link.
	TypeSMS ContentType = "sms"
	// TypeWiFi tags WiFi network credentials.
	TypeWiFi ContentType = "wifi"
	// TypeContact tags a vCard contact.
	TypeContact ContentType = "vcard"
)

// ContentTypes lists every variant tag in display order.
var ContentTypes = []ContentType{
	TypeURL, TypeText, TypeEmail, TypePhone, TypeSMS, TypeWiFi, TypeContact,
}

// Valid reports whether t is a known variant tag.
func (t ContentType) Valid() bool {
	for _, c := range ContentTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Record is the tagged union of QR content variants. Only the structs in this
// package implement it.
type Record interface {
	// Type returns the variant tag.
	Type() ContentType
	isRecord()
}

// URL is a website address encoded verbatim.
type URL struct {
	URL string `json:"url"`
}

// Text is free text encoded verbatim.
type Text struct {
	Text string `json:"text"`
}

// Email is an email address with optional subject and body.
type Email struct {
	Address string `json:"address"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// Phone is a phone number.
type Phone struct {
	Number string `json:"number"`
}

// SMS is a phone number with an optional message.
type SMS struct {
	Number  string `json:"number"`
	Message string `json:"message,omitempty"`
}

// WiFiSecurity is the authentication type of a WiFi network.
type WiFiSecurity string

const (
	// SecurityWPA covers WPA/WPA2/WPA3.
	SecurityWPA WiFiSecurity = "WPA"
	// SecurityWEP is legacy WEP.
	SecurityWEP WiFiSecurity = "WEP"
	// SecurityNone is an open network.
	SecurityNone WiFiSecurity = "nopass"
)

// Valid reports whether s is a known security type.
func (s WiFiSecurity) Valid() bool {
	switch s {
	case SecurityWPA, SecurityWEP, SecurityNone:
		return true
	}
	return false
}

// WiFi holds network credentials.
type WiFi struct {
	SSID     string       `json:"ssid"`
	Password string       `json:"password,omitempty"`
	Security WiFiSecurity `json:"security"`
	Hidden   bool         `json:"hidden"`
}

// Contact is a person rendered as a vCard 3.0 block.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Org       string `json:"org,omitempty"`
	Title     string `json:"title,omitempty"`
}

func (URL) Type() ContentType     { return TypeURL }
func (Text) Type() ContentType    { return TypeText }
func (Email) Type() ContentType   { return TypeEmail }
func (Phone) Type() ContentType   { return TypePhone }
func (SMS) Type() ContentType     { return TypeSMS }
func (WiFi) Type() ContentType    { return TypeWiFi }
func (Contact) Type() ContentType { return TypeContact }

func (URL) isRecord()     {}
func (Text) isRecord()    {}
func (Email) isRecord()   {}
func (Phone) isRecord()   {}
func (SMS) isRecord()     {}
func (WiFi) isRecord()    {}
func (Contact) isRecord() {}

// NewRecord returns the empty record of the given variant with its defaults
// applied (WiFi defaults to WPA, not hidden).
func NewRecord(t ContentType) (Record, error) {
	switch t {
	case TypeURL:
		return URL{}, nil
	case TypeText:
		return Text{}, nil
	case TypeEmail:
		return Email{}, nil
	case TypePhone:
		return Phone{}, nil
	case TypeSMS:
		return SMS{}, nil
	case TypeWiFi:
		return WiFi{Security: SecurityWPA}, nil
	case TypeContact:
		return Contact{}, nil
	}
	return nil, ErrUnknownType
}

// ErrorCorrectionLevel is the QR error-correction level.
type ErrorCorrectionLevel string

const (
	// LevelL recovers about 7% of the symbol.
	LevelL ErrorCorrectionLevel = "L"
	// LevelM recovers about 15%.
	LevelM ErrorCorrectionLevel = "M"
	// LevelQ recovers about 25%.
	LevelQ ErrorCorrectionLevel = "Q"
	// LevelH recovers about 30%.
	LevelH ErrorCorrectionLevel = "H"
)

// Valid reports whether l is one of L, M, Q, H.
func (l ErrorCorrectionLevel) Valid() bool {
	switch l {
	case LevelL, LevelM, LevelQ, LevelH:
		return true
	}
	return false
}

// Size bounds of a rendered code, in pixels.
const (
	MinSize     = 100
	MaxSize     = 400
	DefaultSize = 200
)

// RenderSettings controls how a payload is drawn.
type RenderSettings struct {
	// ForegroundColor is the module color, "#RRGGBB" or "#RGB".
	ForegroundColor string `json:"qrColor"`
	// BackgroundColor is the background color.
	BackgroundColor string `json:"qrBgColor"`
	// Size is the edge length of the image in pixels.
	Size int `json:"qrSize"`
	// ErrorCorrectionLevel is one of L, M, Q, H.
	ErrorCorrectionLevel ErrorCorrectionLevel `json:"errorCorrectionLevel"`
	// LogoImage holds encoded image bytes overlaid at the center, if any.
	LogoImage []byte `json:"logoImage,omitempty"`
}

// DefaultRenderSettings returns black on white, 200px, level H, no logo.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		ForegroundColor:      "#000000",
		BackgroundColor:      "#FFFFFF",
		Size:                 DefaultSize,
		ErrorCorrectionLevel: LevelH,
	}
}

// Normalize fills unset fields with defaults and clamps Size into
// [MinSize, MaxSize].
func (s RenderSettings) Normalize() RenderSettings {
	def := DefaultRenderSettings()
	if s.ForegroundColor == "" {
		s.ForegroundColor = def.ForegroundColor
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = def.BackgroundColor
	}
	if !s.ErrorCorrectionLevel.Valid() {
		s.ErrorCorrectionLevel = def.ErrorCorrectionLevel
	}
	switch {
	case s.Size == 0:
		s.Size = def.Size
	case s.Size < MinSize:
		s.Size = MinSize
	case s.Size > MaxSize:
		s.Size = MaxSize
	}
	return s
}

// SavedEntry is a generated code persisted in the history store.
type SavedEntry struct {
	// ID is opaque, unique and time-derived.
	ID string `json:"id"`
	// Type is the variant tag the payload was encoded from.
	Type ContentType `json:"type"`
	// Value is the encoded payload.
	Value string `json:"value"`
	// Title is the user-provided or default title.
	Title string `json:"title"`
	// CreatedAt is when the entry was saved.
	CreatedAt time.Time `json:"date"`
	// Settings are the render settings at save time.
	Settings RenderSettings `json:"settings"`
}
