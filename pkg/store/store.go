// Package store holds the mock server's mutable in-memory state: users,
// vehicles, parking spots, and reservations.
//
// A Store is an explicitly owned value injected into the engine at
// construction, so isolated test instances can run side by side. All
// methods are safe for concurrent use; the engine additionally serializes
// whole request dispatches, so handler read-modify-write sequences observe
// request-sequential state.
package store

import (
	"fmt"
	"sync"
)

// Store is the single source of mutable truth for the mock server.
type Store struct {
	mu           sync.Mutex
	users        []User
	vehicles     []Vehicle
	spots        []ParkingSpot
	reservations []Reservation

	// Generated ids are item-<n> from monotonic counters. Counters never
	// rewind on removal, so ids stay unique for the store's lifetime even
	// though vehicles can be removed.
	vehicleSeq     int
	reservationSeq int

	snapshot snapshot
}

type snapshot struct {
	users        []User
	vehicles     []Vehicle
	spots        []ParkingSpot
	reservations []Reservation
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Load replaces the store contents with the given seed collections and
// remembers them as the reset snapshot. Id counters restart at the seeded
// collection lengths.
func (s *Store) Load(users []User, vehicles []Vehicle, spots []ParkingSpot, reservations []Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot{
		users:        append([]User(nil), users...),
		vehicles:     append([]Vehicle(nil), vehicles...),
		spots:        append([]ParkingSpot(nil), spots...),
		reservations: append([]Reservation(nil), reservations...),
	}
	s.restoreLocked()
}

// Reset restores the collections captured by the last Load.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked()
}

func (s *Store) restoreLocked() {
	s.users = append([]User(nil), s.snapshot.users...)
	s.vehicles = append([]Vehicle(nil), s.snapshot.vehicles...)
	s.spots = append([]ParkingSpot(nil), s.snapshot.spots...)
	s.reservations = append([]Reservation(nil), s.snapshot.reservations...)
	s.vehicleSeq = len(s.vehicles)
	s.reservationSeq = len(s.reservations)
}

// --- Users ---

// Users returns a copy of all users.
func (s *Store) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]User(nil), s.users...)
}

// UserByID looks up a user by id.
func (s *Store) UserByID(id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// --- Vehicles ---

// Vehicles returns a copy of all vehicles.
func (s *Store) Vehicles() []Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Vehicle(nil), s.vehicles...)
}

// VehicleByID looks up a vehicle by id.
func (s *Store) VehicleByID(id string) (Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// AddVehicle appends a vehicle with a generated id and returns it.
func (s *Store) AddVehicle(v Vehicle) Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = fmt.Sprintf("item-%d", s.vehicleSeq)
	s.vehicleSeq++
	s.vehicles = append(s.vehicles, v)
	return v
}

// RemoveVehicle deletes a vehicle by id. It reports whether the vehicle
// existed.
func (s *Store) RemoveVehicle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.vehicles {
		if v.ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			return true
		}
	}
	return false
}

// --- Parking spots ---

// ParkingSpots returns a copy of the static spot catalog.
func (s *Store) ParkingSpots() []ParkingSpot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ParkingSpot(nil), s.spots...)
}

// --- Reservations ---

// Reservations returns a copy of all reservations, cancelled included.
func (s *Store) Reservations() []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reservation(nil), s.reservations...)
}

// ReservationCount returns the number of reservations in the store.
func (s *Store) ReservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// AddReservation appends a reservation with a generated id and returns it.
func (s *Store) AddReservation(r Reservation) Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = fmt.Sprintf("item-%d", s.reservationSeq)
	s.reservationSeq++
	s.reservations = append(s.reservations, r)
	return r
}

// CancelReservation sets the terminal cancelled flag on a reservation.
// Cancelling an already-cancelled reservation is a no-op that still
// reports success. It reports whether the reservation existed.
func (s *Store) CancelReservation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			s.reservations[i].Cancelled = true
			return true
		}
	}
	return false
}
