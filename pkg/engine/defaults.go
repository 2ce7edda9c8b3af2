package engine

import (
	"time"

	"github.com/parkit/parkmock/pkg/store"
)

// Server-assigned reservation fields. The mock always controls these; any
// caller-supplied value for them is discarded:
//
//	id          assigned by the store (item-<n>)
//	created_at  fixed placeholder instant
//	created_by  fixed placeholder account id
//	start_time  fixed placeholder window start
//	end_time    fixed placeholder window end
//	cancelled   always false on creation
//	vehicle     snapshot resolved from the request's vehicle_id
//
// Tests asserting on a created reservation should assert against this list,
// not against request-echoed values.
var (
	reservationCreatedAt = time.Date(2021, time.January, 30, 10, 30, 0, 0, time.UTC)
	reservationStart     = time.Date(2021, time.January, 30, 8, 30, 0, 0, time.UTC)
	reservationEnd       = reservationCreatedAt
	reservationCreatedBy = "ccf8d1c6-f927-4e51-8de4-4d4a4f4be623"
)

// applyReservationDefaults overwrites the server-assigned fields on a
// reservation before it is stored.
func applyReservationDefaults(r store.Reservation, vehicle *store.Vehicle) store.Reservation {
	r.CreatedAt = reservationCreatedAt
	r.CreatedBy = reservationCreatedBy
	r.StartTime = reservationStart
	r.EndTime = reservationEnd
	r.Cancelled = false
	r.Vehicle = vehicle
	return r
}
