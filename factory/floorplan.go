/*
Package factory provides JSON to Go floor plan conversion.

PURPOSE:
  Converts a JSON floor plan into booking.TableInput and
  booking.CustomerInput values and installs them through the services, so
  a restaurant's layout can be set up without code changes.

JSON SCHEMA:
  {
    "name": "Harbour Bistro",
    "tables": [
      {"number": "T1", "capacity": 2, "location": "Window"},
      {"number": "T5", "capacity": 8, "location": "Terrace",
       "min_capacity": 4, "max_capacity": 10, "active": true}
    ],
    "customers": [
      {"first_name": "Ada", "last_name": "Lovelace",
       "email": "ada@example.com", "is_vip": true}
    ]
  }

KEY FEATURES:
  - Validates the whole plan before anything is written
  - Tables default to active
  - Install is idempotent: known table numbers and customer emails are skipped

USAGE:
  plan, err := factory.LoadFile("floorplan.json")
  res, err := plan.Install(ctx, tables, customers)

SEE ALSO:
  - booking/tables.go: TableService
  - api/scenarios.go: Demo plans
*/
package factory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/warp/reservation-engine/booking"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type FloorPlan struct {
	Name      string         `json:"name"`
	Tables    []TableJSON    `json:"tables"`
	Customers []CustomerJSON `json:"customers,omitempty"`
}

type TableJSON struct {
	Number      string `json:"number"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location,omitempty"`
	MinCapacity *int   `json:"min_capacity,omitempty"`
	MaxCapacity *int   `json:"max_capacity,omitempty"`
	Active      *bool  `json:"active,omitempty"` // Default true
}

type CustomerJSON struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	IsVIP     bool   `json:"is_vip,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes and validates a floor plan.
func Parse(data []byte) (*FloorPlan, error) {
	var fp FloorPlan
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, fmt.Errorf("failed to parse floor plan JSON: %w", err)
	}
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	return &fp, nil
}

func LoadFile(path string) (*FloorPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read floor plan: %w", err)
	}
	return Parse(data)
}

// Validate checks every table against the booking rules and rejects table
// numbers repeated within the plan (case-insensitive).
func (fp FloorPlan) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(fp.Tables))
	for i, tj := range fp.Tables {
		t := booking.Table{
			Number:      strings.TrimSpace(tj.Number),
			Capacity:    tj.Capacity,
			MinCapacity: tj.MinCapacity,
			MaxCapacity: tj.MaxCapacity,
		}
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tables[%d]: %w", i, err))
			continue
		}
		key := strings.ToLower(t.Number)
		if seen[key] {
			errs = append(errs, fmt.Errorf("tables[%d]: duplicate table number %q", i, t.Number))
		}
		seen[key] = true
	}
	for i, cj := range fp.Customers {
		if strings.TrimSpace(cj.FirstName) == "" || strings.TrimSpace(cj.LastName) == "" {
			errs = append(errs, fmt.Errorf("customers[%d]: first_name and last_name are required", i))
		}
	}
	return errors.Join(errs...)
}

// TableInputs converts the plan's tables.
func (fp FloorPlan) TableInputs() []booking.TableInput {
	out := make([]booking.TableInput, len(fp.Tables))
	for i, tj := range fp.Tables {
		active := true
		if tj.Active != nil {
			active = *tj.Active
		}
		out[i] = booking.TableInput{
			Number:      tj.Number,
			Capacity:    tj.Capacity,
			MinCapacity: tj.MinCapacity,
			MaxCapacity: tj.MaxCapacity,
			Location:    tj.Location,
			Active:      active,
		}
	}
	return out
}

func (fp FloorPlan) CustomerInputs() []booking.CustomerInput {
	out := make([]booking.CustomerInput, len(fp.Customers))
	for i, cj := range fp.Customers {
		out[i] = booking.CustomerInput{
			FirstName: cj.FirstName,
			LastName:  cj.LastName,
			Email:     cj.Email,
			Phone:     cj.Phone,
			IsVIP:     cj.IsVIP,
		}
	}
	return out
}

// =============================================================================
// INSTALL
// =============================================================================

type InstallResult struct {
	Tables           []booking.Table
	Customers        []booking.Customer
	TablesSkipped    int
	CustomersSkipped int
}

// Install creates the plan's tables and customers. Tables whose number
// already exists and customers whose email is already registered are
// left untouched.
func (fp FloorPlan) Install(ctx context.Context, tables *booking.TableService, customers *booking.CustomerService) (*InstallResult, error) {
	res := &InstallResult{}

	for _, in := range fp.TableInputs() {
		existing, err := tables.GetTableByNumber(ctx, strings.TrimSpace(in.Number))
		if err != nil && !booking.IsNotFound(err) {
			return res, err
		}
		if existing != nil {
			res.TablesSkipped++
			continue
		}
		t, err := tables.CreateTable(ctx, in)
		if err != nil {
			return res, fmt.Errorf("create table %s: %w", in.Number, err)
		}
		res.Tables = append(res.Tables, *t)
	}

	if len(fp.Customers) == 0 {
		return res, nil
	}
	known, err := customers.ListCustomers(ctx)
	if err != nil {
		return res, err
	}
	emails := make(map[string]bool, len(known))
	for _, c := range known {
		if c.Email != "" {
			emails[strings.ToLower(c.Email)] = true
		}
	}
	for _, in := range fp.CustomerInputs() {
		key := strings.ToLower(strings.TrimSpace(in.Email))
		if key != "" && emails[key] {
			res.CustomersSkipped++
			continue
		}
		c, err := customers.CreateCustomer(ctx, in)
		if err != nil {
			return res, fmt.Errorf("create customer %s: %w", in.Email, err)
		}
		if key != "" {
			emails[key] = true
		}
		res.Customers = append(res.Customers, *c)
	}
	return res, nil
}
