// Package camara provides the response envelope and HTTP client for the
// Chamber of Deputies open-data API (dadosabertos.camara.leg.br/api/v2).
package camara

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Envelope is the common response wrapper of the open-data API. Dados is
// kept raw because the same endpoint may answer with an object or an array.
type Envelope struct {
	Dados json.RawMessage `json:"dados"`
	Links []Link          `json:"links"`
}

// Link is one entry of the envelope's link collection.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Next returns the href of the "next" relation, or "" when there is none.
func (e *Envelope) Next() string {
	for _, l := range e.Links {
		if l.Rel == "next" && l.Href != "" {
			return l.Href
		}
	}
	return ""
}

// Objects returns Dados as a sequence of records. A non-array payload yields
// an empty slice; array elements that are not objects yield empty records so
// positions are preserved.
func (e *Envelope) Objects() []map[string]any {
	var items []any
	if err := decodeLoose(e.Dados, &items); err != nil {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, _ := it.(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		out = append(out, m)
	}
	return out
}

// First returns the describing record of a payload: the object itself, or
// the first element of an array. Returns nil when neither is available.
func (e *Envelope) First() map[string]any {
	var v any
	if err := decodeLoose(e.Dados, &v); err != nil {
		return nil
	}
	switch d := v.(type) {
	case map[string]any:
		return d
	case []any:
		if len(d) == 0 {
			return nil
		}
		m, _ := d[0].(map[string]any)
		return m
	}
	return nil
}

// IsEmpty reports whether Dados is absent, null, an empty object or an empty
// array. Scalars count as empty.
func (e *Envelope) IsEmpty() bool {
	var v any
	if err := decodeLoose(e.Dados, &v); err != nil {
		return true
	}
	switch d := v.(type) {
	case map[string]any:
		return len(d) == 0
	case []any:
		return len(d) == 0
	}
	return true
}

// decodeLoose decodes keeping numbers as json.Number so identifiers
// stringify exactly as upstream wrote them.
func decodeLoose(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string // bounded excerpt
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d @ %s :: %s", e.StatusCode, e.URL, e.Body)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
