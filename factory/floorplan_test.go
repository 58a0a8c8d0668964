package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/reservation-engine/booking"
	"github.com/warp/reservation-engine/booking/store"
)

const bistroJSON = `{
  "name": "Harbour Bistro",
  "tables": [
    {"number": "T1", "capacity": 2, "location": "Window"},
    {"number": "T2", "capacity": 4, "location": "Main"},
    {"number": "T3", "capacity": 8, "location": "Terrace", "min_capacity": 4, "max_capacity": 10},
    {"number": "T4", "capacity": 6, "active": false}
  ],
  "customers": [
    {"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "is_vip": true},
    {"first_name": "Alan", "last_name": "Turing"}
  ]
}`

func services() (*booking.TableService, *booking.CustomerService) {
	mem := store.NewMemory()
	clock := booking.NewManualClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	return booking.NewTableService(mem, clock), booking.NewCustomerService(mem, clock)
}

func TestParse(t *testing.T) {
	fp, err := Parse([]byte(bistroJSON))
	require.NoError(t, err)

	assert.Equal(t, "Harbour Bistro", fp.Name)
	require.Len(t, fp.Tables, 4)

	inputs := fp.TableInputs()
	assert.True(t, inputs[0].Active, "tables default to active")
	assert.False(t, inputs[3].Active)
	require.NotNil(t, inputs[2].MinCapacity)
	assert.Equal(t, 4, *inputs[2].MinCapacity)
	assert.Equal(t, 10, *inputs[2].MaxCapacity)

	customers := fp.CustomerInputs()
	require.Len(t, customers, 2)
	assert.True(t, customers[0].IsVIP)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"malformed", `{"tables": [`, "parse floor plan"},
		{"zero capacity", `{"tables": [{"number": "T1", "capacity": 0}]}`, "tables[0]"},
		{"min above capacity", `{"tables": [{"number": "T1", "capacity": 2, "min_capacity": 3}]}`, "tables[0]"},
		{"duplicate number", `{"tables": [{"number": "T1", "capacity": 2}, {"number": "t1", "capacity": 4}]}`, "duplicate table number"},
		{"customer without name", `{"tables": [], "customers": [{"email": "x@example.com"}]}`, "customers[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(bistroJSON), 0o600))

	fp, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, fp.Tables, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestInstall_IsIdempotent(t *testing.T) {
	// GIVEN: An empty restaurant
	ctx := context.Background()
	tables, customers := services()
	fp, err := Parse([]byte(bistroJSON))
	require.NoError(t, err)

	// WHEN: Installing the plan twice
	first, err := fp.Install(ctx, tables, customers)
	require.NoError(t, err)
	second, err := fp.Install(ctx, tables, customers)
	require.NoError(t, err)

	// THEN: Everything is created once
	assert.Len(t, first.Tables, 4)
	assert.Len(t, first.Customers, 2)

	assert.Empty(t, second.Tables)
	assert.Equal(t, 4, second.TablesSkipped)
	assert.Equal(t, 1, second.CustomersSkipped, "only customers with an email can be matched")
	assert.Len(t, second.Customers, 1)

	all, err := tables.ListTables(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	active, err := tables.ListTables(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}
