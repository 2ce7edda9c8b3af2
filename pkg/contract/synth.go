package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

// ExampleResponse synthesizes the contract-declared success response for an
// operation: the status code of its lowest 2xx response and a body derived
// from the declared example or schema. Operations without a bespoke handler
// still answer with contract-shaped data instead of failing closed.
//
// The result is deterministic: it depends only on the contract. Body
// resolution order is the media-type example, then the first named example,
// then the schema's example, then a value synthesized from the schema
// itself.
func (c *Contract) ExampleResponse(operationID string) (int, any, error) {
	op, ok := c.ops[operationID]
	if !ok {
		return 0, nil, fmt.Errorf("operation %q is not declared in the contract", operationID)
	}

	status, response, err := successResponse(op)
	if err != nil {
		return 0, nil, fmt.Errorf("operation %q: %w", operationID, err)
	}

	media := response.Content.Get("application/json")
	if media == nil {
		return status, nil, nil
	}

	// Examples are returned as deep copies: callers merge live entities into
	// list envelopes, and that must not grow the document's own example.
	if media.Example != nil {
		return status, cloneValue(media.Example), nil
	}

	if len(media.Examples) > 0 {
		names := make([]string, 0, len(media.Examples))
		for name := range media.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		if ex := media.Examples[names[0]]; ex.Value != nil && ex.Value.Value != nil {
			return status, cloneValue(ex.Value.Value), nil
		}
	}

	if media.Schema != nil {
		g := &schemaGen{visited: make(map[string]bool)}
		return status, g.value(media.Schema), nil
	}

	return status, nil, nil
}

// successResponse picks the lowest declared 2xx response, falling back to
// the default response with status 200.
func successResponse(op *openapi3.Operation) (int, *openapi3.Response, error) {
	if op.Responses == nil {
		return 0, nil, fmt.Errorf("no responses declared")
	}

	best := 0
	var bestResp *openapi3.Response
	for code, ref := range op.Responses.Map() {
		status, err := strconv.Atoi(code)
		if err != nil || status < 200 || status > 299 || ref.Value == nil {
			continue
		}
		if best == 0 || status < best {
			best = status
			bestResp = ref.Value
		}
	}
	if bestResp != nil {
		return best, bestResp, nil
	}

	if def := op.Responses.Default(); def != nil && def.Value != nil {
		return 200, def.Value, nil
	}
	return 0, nil, fmt.Errorf("no success response declared")
}

// schemaGen derives a deterministic example value from a schema. Every
// choice a generator could randomize is pinned: enums pick their first
// entry, composition picks the first variant, arrays hold one element.
type schemaGen struct {
	visited map[string]bool
}

func (g *schemaGen) value(ref *openapi3.SchemaRef) any {
	if ref == nil || ref.Value == nil {
		return nil
	}

	// Break $ref cycles rather than recurse forever.
	if ref.Ref != "" {
		if g.visited[ref.Ref] {
			return nil
		}
		g.visited[ref.Ref] = true
		defer delete(g.visited, ref.Ref)
	}

	schema := ref.Value

	if schema.Example != nil {
		return schema.Example
	}
	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}
	if schema.Default != nil {
		return schema.Default
	}

	if len(schema.AllOf) > 0 {
		merged := make(map[string]any)
		for _, sub := range schema.AllOf {
			if m, ok := g.value(sub).(map[string]any); ok {
				for k, v := range m {
					merged[k] = v
				}
			}
		}
		for name, prop := range schema.Properties {
			merged[name] = g.value(prop)
		}
		return merged
	}
	if len(schema.OneOf) > 0 {
		return g.value(schema.OneOf[0])
	}
	if len(schema.AnyOf) > 0 {
		return g.value(schema.AnyOf[0])
	}

	switch {
	case schema.Type.Is("object"), len(schema.Properties) > 0:
		obj := make(map[string]any, len(schema.Properties))
		for name, prop := range schema.Properties {
			obj[name] = g.value(prop)
		}
		return obj
	case schema.Type.Is("array"):
		if schema.Items == nil {
			return []any{}
		}
		return []any{g.value(schema.Items)}
	case schema.Type.Is("string"):
		return exampleString(schema.Format)
	case schema.Type.Is("integer"):
		if schema.Min != nil {
			return int64(*schema.Min)
		}
		return int64(0)
	case schema.Type.Is("number"):
		if schema.Min != nil {
			return *schema.Min
		}
		return float64(0)
	case schema.Type.Is("boolean"):
		return true
	default:
		return nil
	}
}

// cloneValue deep-copies a JSON-shaped value via an encode/decode round
// trip.
func cloneValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// exampleString returns a fixed value for common string formats.
func exampleString(format string) string {
	switch format {
	case "date-time":
		return "2021-01-30T08:30:00Z"
	case "date":
		return "2021-01-30"
	case "time":
		return "08:30:00Z"
	case "email":
		return "user@example.com"
	case "uuid":
		return "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	case "uri", "url":
		return "https://example.com/resource"
	case "hostname":
		return "api.example.com"
	case "ipv4":
		return "192.0.2.1"
	case "byte":
		return "c3RyaW5n"
	default:
		return "string"
	}
}
