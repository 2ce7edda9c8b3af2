package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkit/parkmock/pkg/store"
)

func TestDefaultSeed(t *testing.T) {
	d := Default()

	require.NotEmpty(t, d.Users)
	assert.Equal(t, "test@adobe.com", d.Users[0].Email)
	assert.Len(t, d.ParkingSpots, 5)
	assert.Empty(t, d.Reservations)
}

func TestApply_LoadsStore(t *testing.T) {
	st := store.New()
	Default().Apply(st)

	assert.Len(t, st.Users(), 2)
	assert.Len(t, st.Vehicles(), 1)
	assert.Len(t, st.ParkingSpots(), 5)
	assert.Equal(t, 0, st.ReservationCount())
}

func TestApply_GeneratesMissingIDs(t *testing.T) {
	d := &Data{
		Users:    []store.User{{Email: "anon@example.com"}},
		Vehicles: []store.Vehicle{{UserID: "u1", Make: "VW"}},
	}

	st := store.New()
	d.Apply(st)

	users := st.Users()
	require.Len(t, users, 1)
	_, err := uuid.Parse(users[0].ID)
	assert.NoError(t, err, "generated user id should be a UUID")

	vehicles := st.Vehicles()
	require.Len(t, vehicles, 1)
	_, err = uuid.Parse(vehicles[0].ID)
	assert.NoError(t, err, "generated vehicle id should be a UUID")
}

func TestLoad_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - id: u1
    email: u1@example.com
parking_spots:
  - id: S1
    name: Spot 1
    charger: true
`), 0o644))

	d, err := Load(path)
	require.NoError(t, err)

	require.Len(t, d.Users, 1)
	assert.Equal(t, "u1@example.com", d.Users[0].Email)
	require.Len(t, d.ParkingSpots, 1)
	assert.True(t, d.ParkingSpots[0].Charger)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
