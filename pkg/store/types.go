package store

import "time"

// User is a read-only account record. The mock never creates or mutates
// users; handlers only look them up.
type User struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Email     string `json:"email" yaml:"email"`
}

// Vehicle belongs to a user and can be created and removed by handlers.
type Vehicle struct {
	ID           string `json:"id" yaml:"id"`
	UserID       string `json:"user_id" yaml:"user_id"`
	Make         string `json:"make" yaml:"make"`
	Model        string `json:"model" yaml:"model"`
	LicensePlate string `json:"license_plate" yaml:"license_plate"`
}

// ParkingSpot is a static catalog entry. Availability is derived from
// reservations, never stored on the spot itself.
type ParkingSpot struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Disabled bool   `json:"disabled" yaml:"disabled"`
	Charger  bool   `json:"charger" yaml:"charger"`
}

// Reservation books a parking spot for a time window. The vehicle is
// denormalized into a snapshot at creation time so later vehicle removal
// does not hollow out existing reservations.
//
// Lifecycle: created (active) -> cancelled. Cancellation is terminal and
// one-way; reservations are never deleted.
type Reservation struct {
	ID            string    `json:"id" yaml:"id"`
	ParkingSpotID string    `json:"parking_spot_id" yaml:"parking_spot_id"`
	UserID        string    `json:"user_id" yaml:"user_id"`
	Vehicle       *Vehicle  `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	StartTime     time.Time `json:"start_time" yaml:"start_time"`
	EndTime       time.Time `json:"end_time" yaml:"end_time"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	CreatedBy     string    `json:"created_by" yaml:"created_by"`
	Cancelled     bool      `json:"cancelled" yaml:"cancelled"`
}
