// Package jsoncodec wraps the JSON serializer used by Builder.JSON(): a
// swappable Encoder interface defaulting to goccy/go-json, an
// encoding/json-compatible drop-in with materially better throughput.
package jsoncodec

import "github.com/goccy/go-json"

// Encoder serializes a value to JSON bytes. Implementations must be safe
// for concurrent use.
type Encoder interface {
	Marshal(v any) ([]byte, error)
}

type goJSONEncoder struct{}

func (goJSONEncoder) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Default is the Encoder Builder.JSON uses; Builder has no per-instance
// encoder option, so substituting one means replacing Default.
var Default Encoder = goJSONEncoder{}
