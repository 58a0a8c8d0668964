/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos. Each scenario installs a floor plan and customers, then
  books through ReservationService so every booking obeys the same rules
  as a real one.

AVAILABLE SCENARIOS:
  bistro:             Six tables, three regulars, no bookings
  busy-friday:        The bistro with a full Friday dinner service
  vip-and-blacklist:  A VIP with a private-room booking and a blacklisted guest

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Install the floor plan via factory
 3. Create bookings relative to the current clock

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "busy-friday"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - factory/floorplan.go: Floor plan JSON
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/reservation-engine/booking"
	"github.com/warp/reservation-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "bistro",
		Name:        "Bistro",
		Description: "Six tables across window, main room, terrace and private room",
	},
	{
		ID:          "busy-friday",
		Name:        "Busy Friday",
		Description: "Next Friday's dinner service with eight bookings, one cancelled",
	},
	{
		ID:          "vip-and-blacklist",
		Name:        "VIP & Blacklist",
		Description: "A VIP booked into the private room tomorrow and a blacklisted guest",
	},
}

const bistroPlan = `{
  "name": "Bistro",
  "tables": [
    {"number": "T1", "capacity": 2, "location": "Window"},
    {"number": "T2", "capacity": 2, "location": "Window"},
    {"number": "T3", "capacity": 4, "location": "Main"},
    {"number": "T4", "capacity": 4, "location": "Main"},
    {"number": "T5", "capacity": 6, "location": "Terrace"},
    {"number": "T6", "capacity": 8, "location": "Private", "min_capacity": 5, "max_capacity": 10}
  ],
  "customers": [
    {"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "phone": "+44 20 7946 0001"},
    {"first_name": "Alan", "last_name": "Turing", "email": "alan@example.com"},
    {"first_name": "Grace", "last_name": "Hopper", "email": "grace@example.com"}
  ]
}`

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var scenario *ScenarioDTO
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			scenario = &scenarios[i]
		}
	}
	if scenario == nil {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.loadScenario(r.Context(), scenario.ID)
	if err != nil {
		h.currentScenario = ""
		h.writeServiceError(w, r, fmt.Errorf("load scenario %s: %w", scenario.ID, err))
		return
	}
	h.currentScenario = scenario.ID
	result.Scenario = *scenario

	h.log.WithField("scenario", scenario.ID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) loadScenario(ctx context.Context, id string) (*ScenarioResultDTO, error) {
	if err := h.Store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}

	plan, err := factory.Parse([]byte(bistroPlan))
	if err != nil {
		return nil, err
	}
	installed, err := plan.Install(ctx, h.Tables, h.Customers)
	if err != nil {
		return nil, err
	}
	res := &ScenarioResultDTO{
		Tables:    len(installed.Tables),
		Customers: len(installed.Customers),
	}

	switch id {
	case "bistro":
	case "busy-friday":
		res.Reservations, err = h.loadBusyFriday(ctx, installed.Customers)
	case "vip-and-blacklist":
		var extra int
		extra, res.Reservations, err = h.loadVIPAndBlacklist(ctx)
		res.Customers += extra
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type scenarioBooking struct {
	hour, minute int
	party        int
	cancel       bool
}

func (h *Handler) loadBusyFriday(ctx context.Context, customers []booking.Customer) (int, error) {
	friday := h.nextWeekday(time.Friday)
	bookings := []scenarioBooking{
		{18, 0, 2, false},
		{18, 0, 2, false},
		{18, 30, 4, false},
		{19, 0, 4, true},
		{19, 0, 6, false},
		{20, 0, 2, false},
		{20, 0, 5, false},
		{20, 30, 3, false},
	}

	for i, b := range bookings {
		c := customers[i%len(customers)]
		conf, err := h.Reservations.CreateReservation(ctx, booking.CreateRequest{
			CustomerID: c.ID,
			Moment:     at(friday, b.hour, b.minute),
			PartySize:  b.party,
		})
		if err != nil {
			return i, fmt.Errorf("booking %d (%d guests at %02d:%02d): %w", i+1, b.party, b.hour, b.minute, err)
		}
		if b.cancel {
			if _, err := h.Reservations.CancelReservation(ctx, conf.ReservationID, "Change of plans"); err != nil {
				return i, err
			}
		}
	}
	return len(bookings), nil
}

// loadVIPAndBlacklist returns the customers added and the bookings made.
func (h *Handler) loadVIPAndBlacklist(ctx context.Context) (int, int, error) {
	vip, err := h.Customers.CreateCustomer(ctx, booking.CustomerInput{
		FirstName: "Katherine",
		LastName:  "Johnson",
		Email:     "katherine@example.com",
		IsVIP:     true,
	})
	if err != nil {
		return 0, 0, err
	}
	banned, err := h.Customers.CreateCustomer(ctx, booking.CustomerInput{
		FirstName: "Victor",
		LastName:  "Lustig",
		Email:     "victor@example.com",
	})
	if err != nil {
		return 1, 0, err
	}
	if _, err := h.Customers.SetBlacklisted(ctx, banned.ID, true); err != nil {
		return 2, 0, err
	}

	tomorrow := booking.StartOfDay(h.clock.Now().In(h.loc)).AddDate(0, 0, 1)
	_, err = h.Reservations.CreateReservation(ctx, booking.CreateRequest{
		CustomerID:        vip.ID,
		Moment:            at(tomorrow, 19, 30),
		PartySize:         6,
		DurationMinutes:   180,
		SpecialRequests:   "Anniversary dinner, champagne on arrival",
		PreferredLocation: "private",
	})
	if err != nil {
		return 2, 0, err
	}
	return 2, 1, nil
}

// nextWeekday returns midnight of the next given weekday, at least one day
// ahead, in the restaurant zone.
func (h *Handler) nextWeekday(day time.Weekday) time.Time {
	today := booking.StartOfDay(h.clock.Now().In(h.loc))
	ahead := (int(day) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return today.AddDate(0, 0, ahead)
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
