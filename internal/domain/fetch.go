package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Upstream source names used in errors, metrics and response metadata.
const (
	SourceUSGS      = "usgs"
	SourceOpenMeteo = "open-meteo"
	SourceOverpass  = "overpass"
)

// ErrNoData reports an upstream response that parsed but carried nothing usable.
var ErrNoData = errors.New("upstream returned no data")

// FetchError describes a failed upstream fetch. Status is the upstream HTTP
// status, or zero when the request never got a response.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result holds a fetched value or the caller's fallback. When Err is set,
// Value is the fallback and Approximate is true.
type Result[T any] struct {
	Value       T
	Err         error
	Approximate bool
}

// Resolve returns v when err is nil, otherwise the fallback marked approximate.
func Resolve[T any](v T, err error, fallback T) Result[T] {
	if err != nil {
		return Result[T]{Value: fallback, Err: err, Approximate: true}
	}
	return Result[T]{Value: v}
}

// OK reports whether the value came from the upstream.
func (r Result[T]) OK() bool { return r.Err == nil }

// ErrorMessage returns the error text, or "" when the fetch succeeded.
func (r Result[T]) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type resultJSON[T any] struct {
	Value       T      `json:"value"`
	Approximate bool   `json:"approximate"`
	Error       string `json:"error,omitempty"`
}

// MarshalJSON includes the fetch error text so clients can show why a value
// is approximate.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON[T]{Value: r.Value, Approximate: r.Approximate, Error: r.ErrorMessage()})
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var w resultJSON[T]
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Value = w.Value
	r.Approximate = w.Approximate
	r.Err = nil
	if w.Error != "" {
		r.Err = errors.New(w.Error)
	}
	return nil
}
