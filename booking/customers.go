package booking

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// CustomerService is the small slice of customer handling the booking flow
// needs: registering a guest and toggling the blacklist.
type CustomerService struct {
	Store TxStore
	Clock Clock
}

func NewCustomerService(store TxStore, clock Clock) *CustomerService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CustomerService{Store: store, Clock: clock}
}

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	IsVIP     bool
}

func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	c := Customer{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		IsVIP:     in.IsVIP,
		CreatedAt: s.Clock.Now(),
	}
	if c.FirstName == "" || c.LastName == "" {
		return nil, violation(RuleInvalidInput, "First and last name are required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return nil, violation(RuleInvalidInput, "Invalid email address %q", c.Email)
		}
	}
	if err := s.Store.SaveCustomer(ctx, &c); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return &c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id CustomerID) (*Customer, error) {
	c, err := s.Store.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if c == nil {
		return nil, notFound("customer", id)
	}
	return c, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.Store.ListCustomers(ctx)
}

// SetBlacklisted flags or clears a customer. Existing reservations are kept.
func (s *CustomerService) SetBlacklisted(ctx context.Context, id CustomerID, blacklisted bool) (*Customer, error) {
	var out Customer
	err := s.Store.WithTx(ctx, func(tx Store) error {
		c, err := tx.GetCustomer(ctx, id)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if c == nil {
			return notFound("customer", id)
		}
		c.IsBlacklisted = blacklisted
		if err := tx.SaveCustomer(ctx, c); err != nil {
			return fmt.Errorf("save customer: %w", err)
		}
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
