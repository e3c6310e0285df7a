package models

import (
	"encoding/json"
	"fmt"
)

// Envelope carries a Record over JSON as {"type": ..., "data": {...}}.
type Envelope struct {
	Record Record
}

type envelopeJSON struct {
	Type ContentType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Record == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(e.Record)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{Type: e.Record.Type(), Data: data})
}

// UnmarshalJSON implements json.Unmarshaler. Missing data yields the empty
// record of the tagged variant.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	rec, err := unmarshalRecord(raw.Type, raw.Data)
	if err != nil {
		return err
	}
	e.Record = rec
	return nil
}

func unmarshalRecord(t ContentType, data json.RawMessage) (Record, error) {
	switch t {
	case TypeURL:
		return decodeAs[URL](data)
	case TypeText:
		return decodeAs[Text](data)
	case TypeEmail:
		return decodeAs[Email](data)
	case TypePhone:
		return decodeAs[Phone](data)
	case TypeSMS:
		return decodeAs[SMS](data)
	case TypeWiFi:
		w, err := decodeAs[WiFi](data)
		if err != nil {
			return nil, err
		}
		if w.Security == "" {
			w.Security = SecurityWPA
		}
		if !w.Security.Valid() {
			return nil, fmt.Errorf("wifi security %q: %w", w.Security, ErrUnknownType)
		}
		return w, nil
	case TypeContact:
		return decodeAs[Contact](data)
	}
	return nil, fmt.Errorf("%q: %w", t, ErrUnknownType)
}

func decodeAs[T Record](data json.RawMessage) (T, error) {
	var r T
	if len(data) == 0 || string(data) == "null" {
		return r, nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("decode %s: %w", r.Type(), err)
	}
	return r, nil
}
