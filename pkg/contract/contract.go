// Package contract wraps the externally authored OpenAPI document the mock
// server answers for. The document is a read-only input: parkmock routes,
// validates, and synthesizes responses from it but never modifies it.
package contract

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// Contract is a loaded, validated API contract with an operation index and
// a request router derived from it.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
	ops    map[string]*openapi3.Operation
}

// Load reads and validates an OpenAPI document from a file.
func Load(path string) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract from %s: %w", path, err)
	}
	return fromDoc(doc)
}

// LoadFromData reads and validates an OpenAPI document from raw bytes.
func LoadFromData(data []byte) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	return fromDoc(doc)
}

func fromDoc(doc *openapi3.T) (*Contract, error) {
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid contract: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract router: %w", err)
	}

	ops := make(map[string]*openapi3.Operation)
	for _, pathItem := range doc.Paths.Map() {
		for _, op := range pathItem.Operations() {
			if op.OperationID != "" {
				ops[op.OperationID] = op
			}
		}
	}

	return &Contract{doc: doc, router: router, ops: ops}, nil
}

// Doc returns the underlying OpenAPI document.
func (c *Contract) Doc() *openapi3.T {
	return c.doc
}

// FindRoute matches a request to a declared operation.
func (c *Contract) FindRoute(r *http.Request) (*routers.Route, map[string]string, error) {
	return c.router.FindRoute(r)
}

// Operation returns the operation declared with the given id.
func (c *Contract) Operation(id string) (*openapi3.Operation, bool) {
	op, ok := c.ops[id]
	return op, ok
}

// HasOperation reports whether an operation id is declared in the contract.
func (c *Contract) HasOperation(id string) bool {
	_, ok := c.ops[id]
	return ok
}

// OperationIDs returns the ids of all declared operations.
func (c *Contract) OperationIDs() []string {
	ids := make([]string, 0, len(c.ops))
	for id := range c.ops {
		ids = append(ids, id)
	}
	return ids
}

// RequiresBasicAuth reports whether the operation carries a security
// requirement naming an HTTP basic scheme, either directly or inherited
// from the document's global security.
func (c *Contract) RequiresBasicAuth(op *openapi3.Operation) bool {
	requirements := c.doc.Security
	if op != nil && op.Security != nil {
		requirements = *op.Security
	}

	for _, requirement := range requirements {
		for name := range requirement {
			if c.isBasicScheme(name) {
				return true
			}
		}
	}
	return false
}

func (c *Contract) isBasicScheme(name string) bool {
	if c.doc.Components == nil {
		return false
	}
	ref, ok := c.doc.Components.SecuritySchemes[name]
	if !ok || ref.Value == nil {
		return false
	}
	return ref.Value.Type == "http" && ref.Value.Scheme == "basic"
}
