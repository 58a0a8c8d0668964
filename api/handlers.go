/*
handlers.go - HTTP API handlers for the reservation engine

PURPOSE:
  Exposes the booking services via REST API. Handles HTTP request/response
  and JSON serialization, and delegates every decision to package booking.

ENDPOINTS:
  Tables:
    GET    /api/tables                      List tables (?active=true)
    POST   /api/tables                      Create table
    GET    /api/tables/available            Free tables (?moment=&party_size=)
    GET    /api/tables/number/{number}      Lookup by number
    GET    /api/tables/{id}                 Table details
    PUT    /api/tables/{id}                 Replace table
    DELETE /api/tables/{id}                 Delete (or deactivate) table
    GET    /api/tables/{id}/availability    Free at ?moment=&duration=
    GET    /api/tables/{id}/schedule        Bookings on ?date=

  Customers:
    GET    /api/customers                   List customers
    POST   /api/customers                   Create customer
    GET    /api/customers/{id}              Customer details
    GET    /api/customers/{id}/reservations Reservations, newest first
    PUT    /api/customers/{id}/blacklist    Set or clear the blacklist flag

  Reservations:
    GET    /api/reservations                List (?date=&status=&customer_id=)
    POST   /api/reservations                Book
    GET    /api/reservations/availability   Daily grid (?date=&party_size=)
    GET    /api/reservations/upcoming       Confirmed, starting ?within=2h
    GET    /api/reservations/code/{code}    Lookup by confirmation code
    GET    /api/reservations/{id}           Details
    GET    /api/reservations/{id}/history   Audit log
    PUT    /api/reservations/{id}           Modify
    DELETE /api/reservations/{id}           Cancel (?reason=)
    POST   /api/reservations/{id}/confirm|seat|complete|no-show

  Reports:
    GET    /api/reports/occupancy           Utilization on ?date=

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Policy violations, invalid input
  - 404: Customer/table/reservation not found
  - 409: No table available, conflicting write
  - 500: Internal errors (logged, details withheld)

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/warp/reservation-engine/booking"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// ResettableStore is a store the demo scenarios can wipe.
type ResettableStore interface {
	booking.TxStore
	Reset(ctx context.Context) error
}

type Options struct {
	Clock    booking.Clock
	Events   booking.EventSink
	Codes    booking.CodeGenerator
	Logger   logrus.FieldLogger
	Location *time.Location // zone for dates without offset; UTC when nil
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        ResettableStore
	Reservations *booking.ReservationService
	Tables       *booking.TableService
	Customers    *booking.CustomerService

	clock booking.Clock
	log   logrus.FieldLogger
	loc   *time.Location

	mu              sync.Mutex
	currentScenario string
}

func NewHandler(store ResettableStore, opts Options) *Handler {
	if opts.Clock == nil {
		opts.Clock = booking.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	reservations := booking.NewReservationService(store, opts.Clock)
	reservations.Events = opts.Events
	reservations.Log = opts.Logger
	if opts.Codes != nil {
		reservations.Codes = opts.Codes
	}

	return &Handler{
		Store:        store,
		Reservations: reservations,
		Tables:       booking.NewTableService(store, opts.Clock),
		Customers:    booking.NewCustomerService(store, opts.Clock),
		clock:        opts.Clock,
		log:          opts.Logger,
		loc:          opts.Location,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// TABLE HANDLERS
// =============================================================================

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	tables, err := h.Tables.ListTables(r.Context(), activeOnly)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]TableDTO, len(tables))
	for i, t := range tables {
		dtos[i] = toTableDTO(t, h.loc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req TableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.Tables.CreateTable(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTableDTO(*t, h.loc))
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.TableID](w, r)
	if !ok {
		return
	}
	t, err := h.Tables.GetTable(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(*t, h.loc))
}

func (h *Handler) GetTableByNumber(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tables.GetTableByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(*t, h.loc))
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.TableID](w, r)
	if !ok {
		return
	}
	var req TableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.Tables.UpdateTable(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableDTO(*t, h.loc))
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.TableID](w, r)
	if !ok {
		return
	}
	if err := h.Tables.DeleteTable(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AvailableTables lists tables free for a party around a moment.
// GET /api/tables/available?moment=...&party_size=4
func (h *Handler) AvailableTables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	moment, err := h.parseMoment(q.Get("moment"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid moment", err)
		return
	}
	party, err := strconv.Atoi(q.Get("party_size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid party_size", err)
		return
	}
	tables, err := h.Reservations.Inventory().FindAvailableTables(r.Context(), moment, party, 0)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]TableDTO, len(tables))
	for i, t := range tables {
		dtos[i] = toTableDTO(t, h.loc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TableAvailability checks one table.
// GET /api/tables/{id}/availability?moment=...&duration=120
func (h *Handler) TableAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.TableID](w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	moment, err := h.parseMoment(q.Get("moment"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid moment", err)
		return
	}
	minutes := booking.DefaultDurationMinutes
	if s := q.Get("duration"); s != "" {
		if minutes, err = strconv.Atoi(s); err != nil || minutes <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid duration (minutes)", err)
			return
		}
	}
	ok, err = h.Reservations.Inventory().IsTableAvailable(r.Context(), id, moment, time.Duration(minutes)*time.Minute)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TableAvailabilityDTO{
		TableID:         id,
		Moment:          formatTime(moment, h.loc),
		DurationMinutes: minutes,
		Available:       ok,
	})
}

// TableSchedule lists a table's bookings for one day.
// GET /api/tables/{id}/schedule?date=2025-03-14
func (h *Handler) TableSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.TableID](w, r)
	if !ok {
		return
	}
	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	entries, err := h.Tables.TableSchedule(r.Context(), id, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]ScheduleEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ScheduleEntryDTO{
			ReservationID: e.ReservationID,
			Start:         formatTime(e.Start, h.loc),
			End:           formatTime(e.End, h.loc),
			CustomerName:  e.CustomerName,
			PartySize:     e.PartySize,
			Status:        e.Status,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (req TableRequest) input() booking.TableInput {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return booking.TableInput{
		Number:      req.Number,
		Capacity:    req.Capacity,
		MinCapacity: req.MinCapacity,
		MaxCapacity: req.MaxCapacity,
		Location:    req.Location,
		Active:      active,
	}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Customers.ListCustomers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c, h.loc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.Customers.CreateCustomer(r.Context(), booking.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		IsVIP:     req.IsVIP,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(*c, h.loc))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.CustomerID](w, r)
	if !ok {
		return
	}
	c, err := h.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*c, h.loc))
}

func (h *Handler) CustomerReservations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.CustomerID](w, r)
	if !ok {
		return
	}
	rs, err := h.Reservations.ListCustomerReservations(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTOs(rs, h.loc))
}

func (h *Handler) SetBlacklisted(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.CustomerID](w, r)
	if !ok {
		return
	}
	var req BlacklistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.Customers.SetBlacklisted(r.Context(), id, req.Blacklisted)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*c, h.loc))
}

// =============================================================================
// RESERVATION HANDLERS
// =============================================================================

// ListReservations filters by ?date=YYYY-MM-DD, ?status=Confirmed and
// ?customer_id=7.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter booking.ReservationFilter

	if s := q.Get("date"); s != "" {
		date, err := h.parseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		filter.From = booking.StartOfDay(date)
		filter.To = filter.From.AddDate(0, 0, 1)
	}
	if s := q.Get("status"); s != "" {
		st, err := booking.ParseStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
		filter.Statuses = []booking.Status{st}
	}
	if s := q.Get("customer_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid customer_id", err)
			return
		}
		filter.CustomerID = booking.CustomerID(id)
	}

	rs, err := h.Reservations.ListReservations(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTOs(rs, h.loc))
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	moment, err := h.parseMoment(req.Moment)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid moment", err)
		return
	}
	conf, err := h.Reservations.CreateReservation(r.Context(), booking.CreateRequest{
		CustomerID:        req.CustomerID,
		Moment:            moment,
		PartySize:         req.PartySize,
		DurationMinutes:   req.DurationMinutes,
		SpecialRequests:   req.SpecialRequests,
		PreferredTableID:  req.PreferredTableID,
		PreferredLocation: req.PreferredLocation,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConfirmationDTO(*conf, h.loc))
}

// CheckAvailability returns the half-hourly grid for a day.
// GET /api/reservations/availability?date=2025-03-14&party_size=4
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := h.parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	party, err := strconv.Atoi(q.Get("party_size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid party_size", err)
		return
	}
	avail, err := h.Reservations.Inventory().CheckAvailability(r.Context(), date, party)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	dto := DailyAvailabilityDTO{
		Date:      avail.Date.Format(dateLayout),
		PartySize: avail.PartySize,
		Slots:     make([]SlotDTO, len(avail.Slots)),
	}
	for i, s := range avail.Slots {
		ids := s.TableIDs
		if ids == nil {
			ids = []booking.TableID{}
		}
		dto.Slots[i] = SlotDTO{
			Time:            formatTime(s.Time, h.loc),
			AvailableTables: s.AvailableTables,
			TableIDs:        ids,
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// UpcomingReservations lists confirmed bookings starting soon.
// GET /api/reservations/upcoming?within=2h
func (h *Handler) UpcomingReservations(w http.ResponseWriter, r *http.Request) {
	within := 2 * time.Hour
	if s := r.URL.Query().Get("within"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid within (e.g. 90m)", err)
			return
		}
		within = d
	}
	rs, err := h.Reservations.UpcomingReservations(r.Context(), within)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTOs(rs, h.loc))
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.ReservationID](w, r)
	if !ok {
		return
	}
	res, err := h.Reservations.GetReservation(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*res, h.loc))
}

func (h *Handler) GetReservationByCode(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.GetReservationByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*res, h.loc))
}

func (h *Handler) ReservationHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.ReservationID](w, r)
	if !ok {
		return
	}
	entries, err := h.Reservations.ReservationHistory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]LogEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LogEntryDTO{
			Action:    e.Action,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			At:        formatTime(e.At, h.loc),
			Notes:     e.Notes,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[booking.ReservationID](w, r)
	if !ok {
		return
	}
	var req UpdateReservationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	moment, err := h.parseMoment(req.Moment)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid moment", err)
		return
	}
	res, err := h.Reservations.UpdateReservation(r.Context(), id, booking.UpdateRequest{
		Moment:          moment,
		PartySize:       req.PartySize,
		DurationMinutes: req.DurationMinutes,
		SpecialRequests: req.SpecialRequests,
		TableID:         req.TableID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*res, h.loc))
}

// CancelReservation cancels with an optional ?reason=.
// DELETE /api/reservations/{id}
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
		return h.Reservations.CancelReservation(ctx, id, r.URL.Query().Get("reason"))
	})
}

func (h *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Reservations.ConfirmReservation)
}

func (h *Handler) SeatReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Reservations.SeatReservation)
}

func (h *Handler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Reservations.CompleteReservation)
}

func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Reservations.MarkNoShow)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, booking.ReservationID) (*booking.Reservation, error),
) {
	id, ok := pathID[booking.ReservationID](w, r)
	if !ok {
		return
	}
	res, err := apply(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(*res, h.loc))
}

// =============================================================================
// REPORTS
// =============================================================================

// OccupancyReport returns table utilization for one day.
// GET /api/reports/occupancy?date=2025-03-14
func (h *Handler) OccupancyReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	rep, err := h.Reservations.Inventory().OccupancyReport(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOccupancyDTO(*rep))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: booking.RuleInvalidInput}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps booking errors to HTTP. Anything unrecognised is an
// infrastructure failure: it is logged and the client gets an opaque 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *booking.PolicyError
	switch {
	case booking.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: pe.Message, Code: pe.Rule})
	case booking.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: booking.RuleInvalidInput})
	case booking.IsUnavailable(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "unavailable"})
	case booking.IsRetryable(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Conflicting update, please retry", Code: "retry"})
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func pathID[T ~int64](w http.ResponseWriter, r *http.Request) (T, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return T(n), true
}

var momentLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05"}

// parseMoment accepts RFC3339, or a local wall time in the restaurant zone.
func (h *Handler) parseMoment(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("moment is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range momentLayouts {
		if t, err := time.ParseInLocation(layout, s, h.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q (use RFC3339 or YYYY-MM-DDTHH:MM)", s)
}

// parseDate reads YYYY-MM-DD in the restaurant zone; empty means today.
func (h *Handler) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return booking.StartOfDay(h.clock.Now().In(h.loc)), nil
	}
	return time.ParseInLocation(dateLayout, s, h.loc)
}
