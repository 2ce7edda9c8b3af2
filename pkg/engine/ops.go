// Operation handlers for the parking-reservation contract.

package engine

import (
	"net/http"
	"time"

	"github.com/parkit/parkmock/pkg/availability"
	"github.com/parkit/parkmock/pkg/httputil"
	"github.com/parkit/parkmock/pkg/store"
)

// defaultHandlers maps every operation with bespoke business logic to its
// handler. Operations declared in the contract but absent here fall through
// to the synthesized example response.
func (h *Handler) defaultHandlers() map[string]OperationFunc {
	return map[string]OperationFunc{
		"listUsers":                    h.handleListUsers,
		"getUser":                      h.handleGetUser,
		"listParkingSpots":             h.handleListParkingSpots,
		"listParkingSpotsToday":        h.handleListParkingSpots,
		"checkParkingSpotAvailability": h.handleCheckAvailability,
		"listReservations":             h.handleListReservations,
		"createReservation":            h.handleCreateReservation,
		"cancelReservation":            h.handleCancelReservation,
		"listVehicles":                 h.handleListVehicles,
		"createVehicle":                h.handleCreateVehicle,
		"removeVehicle":                h.handleRemoveVehicle,
	}
}

// writeMergedList answers a list operation with the contract's example
// envelope, concatenating live store entities onto the envelope's
// collection so example data and test-seeded data coexist in responses.
func (h *Handler) writeMergedList(w http.ResponseWriter, req *Request, key string, live []any) {
	if req.Scenario.EmptyResponse {
		httputil.WriteJSON(w, http.StatusOK, []any{})
		return
	}

	status, body, err := h.contract.ExampleResponse(req.OperationID)
	if err != nil {
		h.log.Error("no example response for list operation", "operation", req.OperationID, "error", err)
		status, body = http.StatusOK, nil
	}

	envelope, ok := body.(map[string]any)
	if !ok {
		envelope = map[string]any{}
	}
	list, _ := envelope[key].([]any)
	envelope[key] = append(list, live...)
	httputil.WriteJSON(w, status, envelope)
}

// --- Users ---

func (h *Handler) handleListUsers(w http.ResponseWriter, req *Request) {
	users := h.store.Users()
	live := make([]any, len(users))
	for i, u := range users {
		live[i] = u
	}
	h.writeMergedList(w, req, "users", live)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, req *Request) {
	user, ok := h.store.UserByID(req.PathParams["id"])
	if !ok {
		httputil.WriteStatus(w, http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// --- Parking spots ---

// handleListParkingSpots serves both listParkingSpots and
// listParkingSpotsToday: the spot catalog is contract example data only,
// with no live entities merged in.
func (h *Handler) handleListParkingSpots(w http.ResponseWriter, req *Request) {
	if req.Scenario.EmptyResponse {
		httputil.WriteJSON(w, http.StatusOK, []any{})
		return
	}
	h.fallback(w, req)
}

func (h *Handler) handleCheckAvailability(w http.ResponseWriter, req *Request) {
	if req.Scenario.EmptyResponse {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"available_parking_spots": []any{}})
		return
	}

	day, err := parseDay(req.HTTP.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteText(w, http.StatusBadRequest, "invalid date parameter: "+err.Error())
		return
	}

	spots := availability.AvailableSpots(h.store.ParkingSpots(), h.store.Reservations(), day, availability.Options{})
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"available_parking_spots": spots})
}

// parseDay accepts a calendar date or a full timestamp.
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// --- Reservations ---

func (h *Handler) handleListReservations(w http.ResponseWriter, req *Request) {
	reservations := h.store.Reservations()
	live := make([]any, len(reservations))
	for i, r := range reservations {
		live[i] = r
	}
	h.writeMergedList(w, req, "reservations", live)
}

func (h *Handler) handleCreateReservation(w http.ResponseWriter, req *Request) {
	if req.Scenario.TooManyReservations {
		httputil.WriteText(w, http.StatusConflict, "Conflict")
		return
	}

	var vehicle *store.Vehicle
	if v, ok := h.store.VehicleByID(stringField(req.Body, "vehicle_id")); ok {
		vehicle = &v
	}

	reservation := store.Reservation{
		ParkingSpotID: stringField(req.Body, "parking_spot_id"),
		UserID:        stringField(req.Body, "user_id"),
	}
	created := h.store.AddReservation(applyReservationDefaults(reservation, vehicle))
	h.log.Debug("reservation created", "id", created.ID, "parking_spot_id", created.ParkingSpotID)
	httputil.WriteStatus(w, http.StatusOK)
}

func (h *Handler) handleCancelReservation(w http.ResponseWriter, req *Request) {
	if !h.store.CancelReservation(req.PathParams["id"]) {
		httputil.WriteStatus(w, http.StatusNotFound)
		return
	}
	httputil.WriteStatus(w, http.StatusOK)
}

// --- Vehicles ---

func (h *Handler) handleListVehicles(w http.ResponseWriter, req *Request) {
	vehicles := h.store.Vehicles()
	live := make([]any, len(vehicles))
	for i, v := range vehicles {
		live[i] = v
	}
	h.writeMergedList(w, req, "vehicles", live)
}

func (h *Handler) handleCreateVehicle(w http.ResponseWriter, req *Request) {
	vehicle := store.Vehicle{
		UserID:       stringField(req.Body, "user_id"),
		Make:         stringField(req.Body, "make"),
		Model:        stringField(req.Body, "model"),
		LicensePlate: stringField(req.Body, "license_plate"),
	}
	created := h.store.AddVehicle(vehicle)
	h.log.Debug("vehicle created", "id", created.ID)
	httputil.WriteStatus(w, http.StatusOK)
}

func (h *Handler) handleRemoveVehicle(w http.ResponseWriter, req *Request) {
	if !h.store.RemoveVehicle(req.PathParams["id"]) {
		httputil.WriteStatus(w, http.StatusNotFound)
		return
	}
	httputil.WriteStatus(w, http.StatusOK)
}

func stringField(body map[string]any, key string) string {
	if body == nil {
		return ""
	}
	s, _ := body[key].(string)
	return s
}
