package correlate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlogs/starlogs-go/pkg/starlogs/event"
)

var base = time.Date(2025, 10, 15, 7, 31, 19, 238000000, time.UTC)

func destruction(id int64, ts time.Time) *event.Event {
	return &event.Event{
		Kind:      event.VehicleDestroyFull,
		Timestamp: ts,
		VehicleID: id,
		Crew:      &event.CrewCell{},
	}
}

func occupantDeath(victim string, vehicleID string, ts time.Time) *event.Event {
	return &event.Event{
		Kind:       event.Death,
		Timestamp:  ts,
		Victim:     victim,
		DamageType: "VehicleDestruction",
		Zone:       "AEGS_Gladius_" + vehicleID,
	}
}

func TestWindow_JoinsOccupantDeath(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	// Death 150ms later, inside the default 200ms proximity.
	w.Observe(occupantDeath("Occupant1", "6763231335005", base.Add(150*time.Millisecond)))

	require.Equal(t, 1, destroy.Crew.Count())
	assert.Equal(t, []string{"Occupant1"}, destroy.Crew.Names())
}

func TestWindow_JoinsMultipleOccupants(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	w.Observe(occupantDeath("Pilot", "6763231335005", base.Add(50*time.Millisecond)))
	w.Observe(occupantDeath("Gunner", "6763231335005", base.Add(120*time.Millisecond)))

	assert.Equal(t, []string{"Pilot", "Gunner"}, destroy.Crew.Names())
}

func TestWindow_DeathBeforeDestruction(t *testing.T) {
	w := New(0, 0, nil)

	// The destruction and death lines can arrive in either order in the
	// log; only deaths after a registered destruction can join.
	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	// Death 100ms earlier still joins; proximity is absolute distance.
	w.Observe(occupantDeath("EarlyBird", "6763231335005", base.Add(-100*time.Millisecond)))

	assert.Equal(t, 1, destroy.Crew.Count())
}

func TestWindow_OutsideProximity(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	w.Observe(occupantDeath("TooLate", "6763231335005", base.Add(500*time.Millisecond)))

	assert.Equal(t, 0, destroy.Crew.Count())
}

func TestWindow_WrongDamageType(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	death := occupantDeath("ShotGuy", "6763231335005", base.Add(50*time.Millisecond))
	death.DamageType = "Bullet"
	w.Observe(death)

	assert.Equal(t, 0, destroy.Crew.Count())
}

func TestWindow_DamageTypeCaseInsensitive(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	death := occupantDeath("Occupant", "6763231335005", base.Add(50*time.Millisecond))
	death.DamageType = "vehicledestruction"
	w.Observe(death)

	assert.Equal(t, 1, destroy.Crew.Count())
}

func TestWindow_WrongVehicleID(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)

	w.Observe(occupantDeath("OtherShipGuy", "9999999999999", base.Add(50*time.Millisecond)))

	assert.Equal(t, 0, destroy.Crew.Count())
}

func TestWindow_ShortZoneSuffixIgnored(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(12345678, base)
	w.Observe(destroy)

	// Suffixes shorter than nine digits are not entity ids.
	w.Observe(occupantDeath("Occupant", "12345678", base.Add(50*time.Millisecond)))

	assert.Equal(t, 0, destroy.Crew.Count())
}

func TestWindow_HorizonPurge(t *testing.T) {
	w := New(0, 0, nil)

	old := destruction(111111111, base)
	w.Observe(old)

	// A destruction 15s later purges the expired entry.
	w.Observe(destruction(222222222, base.Add(15*time.Second)))

	w.mu.Lock()
	_, oldAlive := w.entries[111111111]
	_, newAlive := w.entries[222222222]
	w.mu.Unlock()

	assert.False(t, oldAlive, "expired entry should be purged")
	assert.True(t, newAlive)
}

func TestWindow_ReplacesSameVehicle(t *testing.T) {
	w := New(0, 0, nil)

	soft := destruction(6763231335005, base)
	soft.Kind = event.VehicleDestroySoft
	w.Observe(soft)

	full := destruction(6763231335005, base.Add(100*time.Millisecond))
	w.Observe(full)

	w.Observe(occupantDeath("Occupant", "6763231335005", base.Add(150*time.Millisecond)))

	assert.Equal(t, 0, soft.Crew.Count(), "replaced entry must not receive occupants")
	assert.Equal(t, 1, full.Crew.Count())
}

func TestWindow_ZeroTimestampsNeverJoin(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, time.Time{})
	w.Observe(destroy)

	w.Observe(occupantDeath("Occupant", "6763231335005", base))

	assert.Equal(t, 0, destroy.Crew.Count())
}

func TestWindow_Reset(t *testing.T) {
	w := New(0, 0, nil)

	destroy := destruction(6763231335005, base)
	w.Observe(destroy)
	w.Reset()

	w.Observe(occupantDeath("Occupant", "6763231335005", base.Add(50*time.Millisecond)))

	assert.Equal(t, 0, destroy.Crew.Count())
}
