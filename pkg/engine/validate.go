package engine

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

// validate runs contract validation for a matched request and returns
// human-readable error messages, empty when the request conforms.
// Security is checked separately before this runs, so the filter's own
// security hook is a no-op here.
func (h *Handler) validate(r *http.Request, route *routers.Route, pathParams map[string]string, body []byte) []string {
	if len(body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	err := openapi3filter.ValidateRequest(r.Context(), input)
	if err == nil {
		return nil
	}
	return validationMessages(err)
}

// validationMessages flattens kin-openapi validation errors into the
// messages concatenated onto the 400 response body.
func validationMessages(err error) []string {
	switch e := err.(type) {
	case openapi3.MultiError:
		var msgs []string
		for _, sub := range e {
			msgs = append(msgs, validationMessages(sub)...)
		}
		return msgs

	case *openapi3filter.RequestError:
		switch {
		case e.Parameter != nil:
			return []string{fmt.Sprintf("parameter %q in %s: %s", e.Parameter.Name, e.Parameter.In, innerReason(e.Err, e.Reason))}
		case e.RequestBody != nil:
			return []string{fmt.Sprintf("request body: %s", innerReason(e.Err, e.Reason))}
		default:
			return []string{e.Error()}
		}

	case *openapi3.SchemaError:
		return []string{e.Reason}

	default:
		return []string{err.Error()}
	}
}

func innerReason(err error, fallback string) string {
	if schemaErr, ok := err.(*openapi3.SchemaError); ok {
		return schemaErr.Reason
	}
	if err != nil {
		return err.Error()
	}
	if fallback != "" {
		return fallback
	}
	return "invalid"
}
