// Package schema derives JSON schemas from Go types for use as dynamic
// output schemas on JSON function inferences.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// For reflects v into a self-contained JSON schema object, inlined with no
// $ref indirection, suitable for InferenceRequest.OutputSchema. Field names
// follow json tags; jsonschema struct tags (description, enum, ...) are
// honored.
func For(v any) (map[string]any, error) {
	if v == nil {
		return nil, fmt.Errorf("schema: cannot reflect nil")
	}

	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := reflector.Reflect(v)
	// The gateway validates outputs against the schema object itself; a
	// draft declaration is just noise there.
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: marshaling reflected schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("schema: decoding reflected schema: %w", err)
	}
	return out, nil
}

// MustFor is For, panicking on error. For use with static types in variable
// initializers.
func MustFor(v any) map[string]any {
	out, err := For(v)
	if err != nil {
		panic(err)
	}
	return out
}
