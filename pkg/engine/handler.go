package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/parkit/parkmock/pkg/contract"
	"github.com/parkit/parkmock/pkg/httputil"
	"github.com/parkit/parkmock/pkg/logging"
	"github.com/parkit/parkmock/pkg/scenario"
	"github.com/parkit/parkmock/pkg/store"
)

// MaxRequestBodySize bounds request bodies accepted by the mock (1MB).
const MaxRequestBodySize = 1 << 20

// Credentials is the single fixed Basic credential pair accepted by
// guarded operations.
type Credentials struct {
	Email    string
	Password string
}

// Request is the normalized descriptor handed to operation handlers.
type Request struct {
	// OperationID identifies the matched contract operation.
	OperationID string

	// HTTP is the underlying request, with any configured path prefix
	// already stripped. Its body has been consumed; use Body instead.
	HTTP *http.Request

	// PathParams holds the path parameters declared by the operation.
	PathParams map[string]string

	// Body is the parsed JSON request body, nil unless the request carried
	// an application/json payload.
	Body map[string]any

	// Scenario carries any test-control overrides for this request.
	Scenario scenario.Scenario
}

// OperationFunc handles a single contract operation.
type OperationFunc func(w http.ResponseWriter, req *Request)

// Handler routes intercepted requests against the contract and owns the
// operation handler registry.
type Handler struct {
	contract   *contract.Contract
	store      *store.Store
	creds      Credentials
	pathPrefix string
	handlers   map[string]OperationFunc
	log        *slog.Logger

	// mu serializes whole request dispatches. Handlers assume
	// request-sequential access to the store.
	mu sync.Mutex
}

// Option customizes a Handler.
type Option func(*Handler)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithPathPrefix strips the given prefix from request paths before contract
// routing, so an application calling /api/reservations reaches the
// /reservations operation.
func WithPathPrefix(prefix string) Option {
	return func(h *Handler) {
		h.pathPrefix = prefix
	}
}

// New creates a Handler bound to a contract and a store, with the default
// parking-domain operation handlers registered. It fails if the contract
// does not declare every operation the handlers cover, so a contract drift
// surfaces at startup instead of as silent fallthrough.
func New(c *contract.Contract, st *store.Store, creds Credentials, opts ...Option) (*Handler, error) {
	h := &Handler{
		contract: c,
		store:    st,
		creds:    creds,
		handlers: make(map[string]OperationFunc),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	for id, fn := range h.defaultHandlers() {
		if err := h.Register(id, fn); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Register binds a handler to a declared operation. Registering against an
// operation the contract does not declare is an error.
func (h *Handler) Register(operationID string, fn OperationFunc) error {
	if !h.contract.HasOperation(operationID) {
		return fmt.Errorf("operation %q is not declared in the contract", operationID)
	}
	h.handlers[operationID] = fn
	return nil
}

// Store returns the entity store backing this handler.
func (h *Handler) Store() *store.Store {
	return h.store
}

// ServeHTTP implements http.Handler.
//
// Resolution order: path/method match, forced-status override, security
// check, contract validation, registered handler, fallback. Every error is
// terminal at this layer; nothing propagates to the host.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pathPrefix != "" && strings.HasPrefix(r.URL.Path, h.pathPrefix) {
		r = r.Clone(r.Context())
		r.URL.Path = strings.TrimPrefix(r.URL.Path, h.pathPrefix)
		if r.URL.Path == "" {
			r.URL.Path = "/"
		}
	}

	bodyBytes, err := readBody(r)
	if err != nil {
		h.log.Warn("request body rejected", "path", r.URL.Path, "error", err)
		httputil.WriteText(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	scn := scenario.FromHeaders(r.Header)

	route, pathParams, err := h.contract.FindRoute(r)
	if err != nil {
		h.log.Debug("no operation matched", "method", r.Method, "path", r.URL.Path)
		httputil.WriteStatus(w, http.StatusNotFound)
		return
	}
	opID := route.Operation.OperationID

	// A forced status short-circuits everything but routing, so tests can
	// exercise client error paths on any declared operation.
	if scn.ForcedStatus != 0 {
		h.log.Debug("forced status override", "operation", opID, "status", scn.ForcedStatus)
		httputil.WriteText(w, scn.ForcedStatus, scn.ForcedText)
		return
	}

	if h.contract.RequiresBasicAuth(route.Operation) && !h.authorized(r) {
		httputil.WriteText(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if msgs := h.validate(r, route, pathParams, bodyBytes); len(msgs) > 0 {
		httputil.WriteText(w, http.StatusBadRequest, strings.Join(msgs, ", "))
		return
	}

	req := &Request{
		OperationID: opID,
		HTTP:        r,
		PathParams:  pathParams,
		Body:        parseJSONBody(r, bodyBytes),
		Scenario:    scn,
	}

	if fn, ok := h.handlers[opID]; ok {
		fn(w, req)
		return
	}
	h.fallback(w, req)
}

// fallback answers an operation that has no bespoke handler with the
// contract's synthesized example response.
func (h *Handler) fallback(w http.ResponseWriter, req *Request) {
	status, body, err := h.contract.ExampleResponse(req.OperationID)
	if err != nil {
		h.log.Error("no example response available", "operation", req.OperationID, "error", err)
		httputil.WriteStatus(w, http.StatusNotImplemented)
		return
	}
	httputil.WriteJSON(w, status, body)
}

func (h *Handler) authorized(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	return ok && user == h.creds.Email && pass == h.creds.Password
}

// readBody drains the request body up to MaxRequestBodySize and restores it
// for contract validation.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxRequestBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxRequestBodySize)
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// parseJSONBody decodes the captured body when the request declares an
// application/json payload. Decode failures return nil; contract validation
// has already rejected malformed bodies for operations that declare one.
func parseJSONBody(r *http.Request, body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	return parsed
}
