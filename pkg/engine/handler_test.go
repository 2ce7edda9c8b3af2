package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkit/parkmock/pkg/contract"
	"github.com/parkit/parkmock/pkg/scenario"
	"github.com/parkit/parkmock/pkg/store"
)

const (
	testEmail    = "test@adobe.com"
	testPassword = "testPassword"
)

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *store.Store) {
	t.Helper()

	c, err := contract.Load("testdata/parkit.yml")
	require.NoError(t, err)

	st := store.New()
	h, err := New(c, st, Credentials{Email: testEmail, Password: testPassword}, opts...)
	require.NoError(t, err)
	return h, st
}

// do sends a request through the handler with valid credentials. A non-nil
// body is sent as JSON. mutate, when set, adjusts the request before
// dispatch.
func do(t *testing.T, h *Handler, method, target string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(testEmail, testPassword)
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func validReservationBody(vehicleID string) map[string]any {
	return map[string]any{
		"parking_spot_id": "S1",
		"user_id":         "u1",
		"vehicle_id":      vehicleID,
		"start_time":      "2021-01-30T08:30:00Z",
		"end_time":        "2021-01-30T10:30:00Z",
	}
}

// --- Routing and registration ---

func TestUnknownPathReturns404(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/nonexistent", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUnknownMethodReturns404(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodDelete, "/users", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegister_UndeclaredOperationFails(t *testing.T) {
	h, _ := newTestHandler(t)

	err := h.Register("teleportVehicle", func(http.ResponseWriter, *Request) {})
	assert.ErrorContains(t, err, "teleportVehicle")
}

func TestPathPrefixStripping(t *testing.T) {
	h, _ := newTestHandler(t, WithPathPrefix("/api"))

	rec := do(t, h, http.MethodGet, "/api/users", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- Security ---

func TestWrongCredentialsReturn401(t *testing.T) {
	h, st := newTestHandler(t)

	targets := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/users", nil},
		{http.MethodGet, "/parking-spots", nil},
		{http.MethodPost, "/reservations", validReservationBody("v1")},
	}

	for _, tc := range targets {
		rec := do(t, h, tc.method, tc.path, tc.body, func(r *http.Request) {
			r.SetBasicAuth("wrong@example.com", "nope")
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
	assert.Equal(t, 0, st.ReservationCount(), "unauthorized create must not mutate the store")
}

func TestMissingAuthorizationReturns401(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Contract validation ---

func TestCreateReservation_MissingFieldReturns400(t *testing.T) {
	h, st := newTestHandler(t)

	body := validReservationBody("v1")
	delete(body, "vehicle_id")

	rec := do(t, h, http.MethodPost, "/reservations", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "vehicle_id")
	assert.Equal(t, 0, st.ReservationCount())
}

func TestAvailability_MissingDateReturns400(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/parking-spots/availability", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Test-control overrides ---

func TestForcedStatusOverride(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/users", nil, func(r *http.Request) {
		r.Header.Set(scenario.HeaderResponseCode, "503")
		r.Header.Set(scenario.HeaderResponseText, "maintenance window")
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "maintenance window", rec.Body.String())
}

func TestForcedStatusBeatsOtherOverrides(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/users", nil, func(r *http.Request) {
		r.Header.Set(scenario.HeaderResponseCode, "418")
		r.Header.Set(scenario.HeaderEmptyResponse, "true")
	})
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestForcedStatusBeatsSecurity(t *testing.T) {
	h, _ := newTestHandler(t)

	// Forced status short-circuits everything but routing, so it wins even
	// with bad credentials.
	rec := do(t, h, http.MethodGet, "/users", nil, func(r *http.Request) {
		r.SetBasicAuth("wrong@example.com", "nope")
		r.Header.Set(scenario.HeaderResponseCode, "502")
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestEmptyResponseOverride(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load([]store.User{{ID: "u1", Email: "u1@example.com"}}, nil, nil, nil)

	for _, path := range []string{"/users", "/vehicles", "/reservations", "/parking-spots", "/parking-spots/today"} {
		rec := do(t, h, http.MethodGet, path, nil, func(r *http.Request) {
			r.Header.Set(scenario.HeaderEmptyResponse, "true")
		})
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, "[]", rec.Body.String(), "%s must return an empty collection regardless of store contents", path)
	}
}

// --- Users ---

func TestListUsers_MergesStoreIntoExample(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load([]store.User{{ID: "live-user", Email: "live@example.com"}}, nil, nil, nil)

	rec := do(t, h, http.MethodGet, "/users", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	users := decodeJSON(t, rec)["users"].([]any)
	assert.Len(t, users, 2, "one contract example user plus one live user")
	last := users[len(users)-1].(map[string]any)
	assert.Equal(t, "live-user", last["id"])
}

func TestGetUser(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load([]store.User{{ID: "u1", FirstName: "Maria", Email: "maria@example.com"}}, nil, nil, nil)

	rec := do(t, h, http.MethodGet, "/users/u1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Maria", decodeJSON(t, rec)["first_name"])

	rec = do(t, h, http.MethodGet, "/users/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Vehicles ---

func TestCreateVehicle_SequentialIDs(t *testing.T) {
	h, st := newTestHandler(t)

	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/vehicles", map[string]any{
			"user_id": "u1", "make": "VW", "model": "ID.3",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	vehicles := st.Vehicles()
	require.Len(t, vehicles, 3)
	for i, want := range []string{"item-0", "item-1", "item-2"} {
		assert.Equal(t, want, vehicles[i].ID)
	}
}

func TestRemoveVehicle(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, []store.Vehicle{{ID: "v1", UserID: "u1"}}, nil, nil)

	rec := do(t, h, http.MethodDelete, "/vehicles/v1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.Vehicles())

	rec = do(t, h, http.MethodDelete, "/vehicles/v1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVehicles_MergesStoreIntoExample(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, []store.Vehicle{{ID: "live-vehicle", UserID: "u1"}}, nil, nil)

	rec := do(t, h, http.MethodGet, "/vehicles", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	vehicles := decodeJSON(t, rec)["vehicles"].([]any)
	assert.Len(t, vehicles, 2)
}

// --- Reservations ---

func TestCreateReservation_ServerAssignedDefaults(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, []store.Vehicle{{ID: "v1", UserID: "u1", Make: "VW"}}, nil, nil)

	body := validReservationBody("v1")
	// Caller-supplied values for server-assigned fields must be discarded.
	body["start_time"] = "2030-06-01T00:00:00Z"
	body["end_time"] = "2030-06-02T00:00:00Z"
	body["cancelled"] = true

	rec := do(t, h, http.MethodPost, "/reservations", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reservations := st.Reservations()
	require.Len(t, reservations, 1)
	got := reservations[0]

	assert.Equal(t, "item-0", got.ID)
	assert.Equal(t, "S1", got.ParkingSpotID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, reservationCreatedBy, got.CreatedBy)
	assert.True(t, got.StartTime.Equal(time.Date(2021, 1, 30, 8, 30, 0, 0, time.UTC)))
	assert.True(t, got.EndTime.Equal(time.Date(2021, 1, 30, 10, 30, 0, 0, time.UTC)))
	assert.False(t, got.Cancelled)
	require.NotNil(t, got.Vehicle)
	assert.Equal(t, "VW", got.Vehicle.Make)
}

func TestCreateReservation_TooManyHeaderReturns409(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, []store.Vehicle{{ID: "v1", UserID: "u1"}}, nil, nil)

	rec := do(t, h, http.MethodPost, "/reservations", validReservationBody("v1"), func(r *http.Request) {
		r.Header.Set(scenario.HeaderTooManyReservations, "true")
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, st.ReservationCount(), "forced conflict must leave the store unchanged")
}

func TestCancelReservation(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, []store.Vehicle{{ID: "v1", UserID: "u1"}}, nil, nil)

	rec := do(t, h, http.MethodPost, "/reservations", validReservationBody("v1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/reservations/item-0/cancel", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.Reservations()[0].Cancelled)

	// Cancelling again succeeds without side effects.
	rec = do(t, h, http.MethodPost, "/reservations/item-0/cancel", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.Reservations()[0].Cancelled)
	assert.Equal(t, 1, st.ReservationCount())

	rec = do(t, h, http.MethodPost, "/reservations/unknown/cancel", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReservations_MergesStoreIntoExample(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, []store.Vehicle{{ID: "v1", UserID: "u1"}}, nil, nil)

	rec := do(t, h, http.MethodPost, "/reservations", validReservationBody("v1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/reservations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reservations := decodeJSON(t, rec)["reservations"].([]any)
	assert.Len(t, reservations, 2, "one contract example reservation plus one live reservation")
}

// --- Availability ---

func TestAvailabilityScenario(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(
		nil,
		[]store.Vehicle{{ID: "v1", UserID: "u1"}},
		[]store.ParkingSpot{{ID: "S1"}, {ID: "S2"}},
		nil,
	)

	rec := do(t, h, http.MethodPost, "/reservations", validReservationBody("v1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	available := func(date string) []string {
		rec := do(t, h, http.MethodGet, "/parking-spots/availability?date="+date, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		raw := decodeJSON(t, rec)["available_parking_spots"].([]any)
		ids := make([]string, len(raw))
		for i, spot := range raw {
			ids[i] = spot.(map[string]any)["id"].(string)
		}
		return ids
	}

	// The created reservation covers 2021-01-30T08:30Z-10:30Z on S1.
	assert.Equal(t, []string{"S2"}, available("2021-01-30"))
	assert.ElementsMatch(t, []string{"S1", "S2"}, available("2021-01-31"))
}

func TestAvailability_EmptyOverride(t *testing.T) {
	h, st := newTestHandler(t)
	st.Load(nil, nil, []store.ParkingSpot{{ID: "S1"}}, nil)

	rec := do(t, h, http.MethodGet, "/parking-spots/availability?date=2021-01-30", nil, func(r *http.Request) {
		r.Header.Set(scenario.HeaderEmptyResponse, "true")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON(t, rec)["available_parking_spots"])
}

// --- Fallback ---

func TestFallback_SynthesizesContractExample(t *testing.T) {
	h, _ := newTestHandler(t)

	// getSettings has no registered handler and falls through to the
	// contract's example.
	rec := do(t, h, http.MethodGet, "/settings", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	settings := decodeJSON(t, rec)
	assert.Equal(t, "de-CH", settings["locale"])
	assert.Equal(t, true, settings["notifications_enabled"])
}

func TestParkingSpotLists_ServeContractExamples(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/parking-spots", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spots := decodeJSON(t, rec)["parking_spots"].([]any)
	assert.Len(t, spots, 2)

	rec = do(t, h, http.MethodGet, "/parking-spots/today", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spots = decodeJSON(t, rec)["parking_spots"].([]any)
	assert.Len(t, spots, 1)
}
