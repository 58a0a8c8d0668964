/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the booking model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TIME FORMATS:
  Instants are RFC3339 in the restaurant's zone. Request moments may also
  be given as "2006-01-02T15:04" without an offset, in which case the
  restaurant's zone applies. Dates are "2006-01-02".

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/reservation-engine/booking"
)

// =============================================================================
// TABLES
// =============================================================================

type TableDTO struct {
	ID          booking.TableID `json:"id"`
	Number      string          `json:"number"`
	Capacity    int             `json:"capacity"`
	MinCapacity *int            `json:"min_capacity,omitempty"`
	MaxCapacity *int            `json:"max_capacity,omitempty"`
	Location    string          `json:"location,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// TableRequest creates or replaces a table. Active defaults to true.
type TableRequest struct {
	Number      string `json:"number"`
	Capacity    int    `json:"capacity"`
	MinCapacity *int   `json:"min_capacity,omitempty"`
	MaxCapacity *int   `json:"max_capacity,omitempty"`
	Location    string `json:"location,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

type TableAvailabilityDTO struct {
	TableID         booking.TableID `json:"table_id"`
	Moment          string          `json:"moment"`
	DurationMinutes int             `json:"duration_minutes"`
	Available       bool            `json:"available"`
}

type ScheduleEntryDTO struct {
	ReservationID booking.ReservationID `json:"reservation_id"`
	Start         string                `json:"start"`
	End           string                `json:"end"`
	CustomerName  string                `json:"customer_name"`
	PartySize     int                   `json:"party_size"`
	Status        booking.Status        `json:"status"`
}

// =============================================================================
// CUSTOMERS
// =============================================================================

type CustomerDTO struct {
	ID            booking.CustomerID `json:"id"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Email         string             `json:"email,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	IsVIP         bool               `json:"is_vip"`
	IsBlacklisted bool               `json:"is_blacklisted"`
	CreatedAt     string             `json:"created_at,omitempty"`
}

type CreateCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsVIP     bool   `json:"is_vip"`
}

type BlacklistRequest struct {
	Blacklisted bool `json:"blacklisted"`
}

// =============================================================================
// RESERVATIONS
// =============================================================================

type ReservationDTO struct {
	ID                 booking.ReservationID `json:"id"`
	CustomerID         booking.CustomerID    `json:"customer_id"`
	TableID            booking.TableID       `json:"table_id"`
	Moment             string                `json:"moment"`
	End                string                `json:"end"`
	PartySize          int                   `json:"party_size"`
	DurationMinutes    int                   `json:"duration_minutes"`
	Status             booking.Status        `json:"status"`
	IsConfirmed        bool                  `json:"is_confirmed"`
	SpecialRequests    string                `json:"special_requests,omitempty"`
	ConfirmationCode   string                `json:"confirmation_code"`
	CreatedAt          string                `json:"created_at"`
	UpdatedAt          string                `json:"updated_at"`
	CancelledAt        *string               `json:"cancelled_at,omitempty"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
}

type CreateReservationRequest struct {
	CustomerID        booking.CustomerID `json:"customer_id"`
	Moment            string             `json:"moment"`
	PartySize         int                `json:"party_size"`
	DurationMinutes   int                `json:"duration_minutes,omitempty"`
	SpecialRequests   string             `json:"special_requests,omitempty"`
	PreferredTableID  booking.TableID    `json:"preferred_table_id,omitempty"`
	PreferredLocation string             `json:"preferred_location,omitempty"`
}

type UpdateReservationRequest struct {
	Moment          string          `json:"moment"`
	PartySize       int             `json:"party_size"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	SpecialRequests *string         `json:"special_requests,omitempty"`
	TableID         booking.TableID `json:"table_id,omitempty"`
}

type ConfirmationDTO struct {
	ReservationID    booking.ReservationID `json:"reservation_id"`
	ConfirmationCode string                `json:"confirmation_code"`
	TableID          booking.TableID       `json:"table_id"`
	TableNumber      string                `json:"table_number"`
	Moment           string                `json:"moment"`
	PartySize        int                   `json:"party_size"`
	DurationMinutes  int                   `json:"duration_minutes"`
	CustomerName     string                `json:"customer_name"`
	Message          string                `json:"message"`
}

type LogEntryDTO struct {
	Action    string         `json:"action"`
	OldStatus booking.Status `json:"old_status,omitempty"`
	NewStatus booking.Status `json:"new_status"`
	At        string         `json:"at"`
	Notes     string         `json:"notes,omitempty"`
}

type SlotDTO struct {
	Time            string            `json:"time"`
	AvailableTables int               `json:"available_tables"`
	TableIDs        []booking.TableID `json:"table_ids"`
}

type DailyAvailabilityDTO struct {
	Date      string    `json:"date"`
	PartySize int       `json:"party_size"`
	Slots     []SlotDTO `json:"slots"`
}

// =============================================================================
// REPORTS
// =============================================================================

type TableOccupancyDTO struct {
	TableID       booking.TableID `json:"table_id"`
	TableNumber   string          `json:"table_number"`
	Capacity      int             `json:"capacity"`
	Reservations  int             `json:"reservations"`
	Covers        int             `json:"covers"`
	BookedMinutes int             `json:"booked_minutes"`
	Utilization   decimal.Decimal `json:"utilization"`
}

type OccupancyDTO struct {
	Date          string              `json:"date"`
	OpenMinutes   int                 `json:"open_minutes"`
	Reservations  int                 `json:"reservations"`
	Covers        int                 `json:"covers"`
	BookedMinutes int                 `json:"booked_minutes"`
	Utilization   decimal.Decimal     `json:"utilization"`
	Tables        []TableOccupancyDTO `json:"tables"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type ScenarioResultDTO struct {
	Scenario     ScenarioDTO `json:"scenario"`
	Tables       int         `json:"tables"`
	Customers    int         `json:"customers"`
	Reservations int         `json:"reservations"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

const dateLayout = "2006-01-02"

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func toTableDTO(t booking.Table, loc *time.Location) TableDTO {
	dto := TableDTO{
		ID:          t.ID,
		Number:      t.Number,
		Capacity:    t.Capacity,
		MinCapacity: t.MinCapacity,
		MaxCapacity: t.MaxCapacity,
		Location:    t.Location,
		Active:      t.Active,
	}
	if !t.CreatedAt.IsZero() {
		dto.CreatedAt = formatTime(t.CreatedAt, loc)
	}
	return dto
}

func toCustomerDTO(c booking.Customer, loc *time.Location) CustomerDTO {
	dto := CustomerDTO{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		IsVIP:         c.IsVIP,
		IsBlacklisted: c.IsBlacklisted,
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = formatTime(c.CreatedAt, loc)
	}
	return dto
}

func toReservationDTO(r booking.Reservation, loc *time.Location) ReservationDTO {
	dto := ReservationDTO{
		ID:                 r.ID,
		CustomerID:         r.CustomerID,
		TableID:            r.TableID,
		Moment:             formatTime(r.Moment, loc),
		End:                formatTime(r.End(), loc),
		PartySize:          r.PartySize,
		DurationMinutes:    r.DurationMinutes,
		Status:             r.Status,
		IsConfirmed:        r.IsConfirmed,
		SpecialRequests:    r.SpecialRequests,
		ConfirmationCode:   r.ConfirmationCode,
		CreatedAt:          formatTime(r.CreatedAt, loc),
		UpdatedAt:          formatTime(r.UpdatedAt, loc),
		CancellationReason: r.CancellationReason,
	}
	if r.CancelledAt != nil {
		s := formatTime(*r.CancelledAt, loc)
		dto.CancelledAt = &s
	}
	return dto
}

func toReservationDTOs(rs []booking.Reservation, loc *time.Location) []ReservationDTO {
	dtos := make([]ReservationDTO, len(rs))
	for i, r := range rs {
		dtos[i] = toReservationDTO(r, loc)
	}
	return dtos
}

func toConfirmationDTO(c booking.Confirmation, loc *time.Location) ConfirmationDTO {
	return ConfirmationDTO{
		ReservationID:    c.ReservationID,
		ConfirmationCode: c.ConfirmationCode,
		TableID:          c.TableID,
		TableNumber:      c.TableNumber,
		Moment:           formatTime(c.Moment, loc),
		PartySize:        c.PartySize,
		DurationMinutes:  c.DurationMinutes,
		CustomerName:     c.CustomerName,
		Message:          c.Message,
	}
}

func toOccupancyDTO(rep booking.OccupancyReport) OccupancyDTO {
	dto := OccupancyDTO{
		Date:          rep.Date.Format(dateLayout),
		OpenMinutes:   rep.OpenMinutes,
		Reservations:  rep.Reservations,
		Covers:        rep.Covers,
		BookedMinutes: rep.BookedMinutes,
		Utilization:   rep.Utilization,
		Tables:        make([]TableOccupancyDTO, len(rep.Tables)),
	}
	for i, t := range rep.Tables {
		dto.Tables[i] = TableOccupancyDTO{
			TableID:       t.TableID,
			TableNumber:   t.TableNumber,
			Capacity:      t.Capacity,
			Reservations:  t.Reservations,
			Covers:        t.Covers,
			BookedMinutes: t.BookedMinutes,
			Utilization:   t.Utilization,
		}
	}
	return dto
}
