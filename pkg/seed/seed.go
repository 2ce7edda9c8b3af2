// Package seed initializes the entity store with startup data.
//
// Seed documents are YAML; entries without ids get generated ones. A
// built-in default set keeps the mock useful with no seed file at all.
package seed

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/parkit/parkmock/pkg/store"
)

// Data is a seed document.
type Data struct {
	Users        []store.User        `yaml:"users"`
	Vehicles     []store.Vehicle     `yaml:"vehicles"`
	ParkingSpots []store.ParkingSpot `yaml:"parking_spots"`
	Reservations []store.Reservation `yaml:"reservations"`
}

// Load reads a seed document from a YAML file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &d, nil
}

// Default returns the built-in seed set: a couple of accounts and a small
// spot catalog, enough for the application to render something real.
func Default() *Data {
	return &Data{
		Users: []store.User{
			{ID: "ccf8d1c6-f927-4e51-8de4-4d4a4f4be623", FirstName: "Test", LastName: "User", Email: "test@adobe.com"},
			{ID: "7f1e8a34-2b0c-4d6e-9f58-1a2b3c4d5e6f", FirstName: "Hannes", LastName: "Meier", Email: "hannes@example.com"},
		},
		Vehicles: []store.Vehicle{
			{ID: "a3b1c2d3-0001-4e5f-8a9b-000000000001", UserID: "ccf8d1c6-f927-4e51-8de4-4d4a4f4be623", Make: "Volkswagen", Model: "ID.3", LicensePlate: "BS 12345"},
		},
		ParkingSpots: []store.ParkingSpot{
			{ID: "P1", Name: "Parking Spot 1"},
			{ID: "P2", Name: "Parking Spot 2", Charger: true},
			{ID: "P3", Name: "Parking Spot 3", Charger: true},
			{ID: "P4", Name: "Parking Spot 4", Disabled: true},
			{ID: "P5", Name: "Parking Spot 5"},
		},
	}
}

// Apply loads the seed data into the store, generating ids for entries
// that omit one. Generated vehicle ids use the same UUID form as seeded
// entities rather than the item-<n> sequence reserved for handler-created
// records.
func (d *Data) Apply(st *store.Store) {
	for i := range d.Users {
		if d.Users[i].ID == "" {
			d.Users[i].ID = uuid.NewString()
		}
	}
	for i := range d.Vehicles {
		if d.Vehicles[i].ID == "" {
			d.Vehicles[i].ID = uuid.NewString()
		}
	}
	for i := range d.ParkingSpots {
		if d.ParkingSpots[i].ID == "" {
			d.ParkingSpots[i].ID = uuid.NewString()
		}
	}
	for i := range d.Reservations {
		if d.Reservations[i].ID == "" {
			d.Reservations[i].ID = uuid.NewString()
		}
	}
	st.Load(d.Users, d.Vehicles, d.ParkingSpots, d.Reservations)
}
