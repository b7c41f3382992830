package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
)

// LinkCustomer ensures a local customer has a remote mapping, searching the
// remote by email first and creating the customer remotely only when no
// match exists. Idempotent: an already-linked customer is refreshed remotely
// rather than duplicated.
func (s *Service) LinkCustomer(ctx context.Context, customerID string) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCustomerSync, func(ctx context.Context) (*syncdomain.Result, error) {
		customer, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{TotalCount: 1}
		if err := s.linkCustomer(ctx, customer, result); err != nil {
			return nil, err
		}
		result.Finalize(s.now())
		return result, nil
	})
}

func (s *Service) linkCustomer(ctx context.Context, customer *trade.Customer, result *syncdomain.Result) error {
	if customer.Linked() {
		if _, err := s.gateway.UpdateCustomer(ctx, remoteCustomerFrom(customer)); err != nil {
			s.logger.Warn("remote customer refresh failed",
				zap.String("customer_id", customer.ID),
				zap.Error(err),
			)
		}
		result.SkippedCount++
		return nil
	}

	matches, err := s.gateway.SearchCustomers(ctx, syncdomain.CustomerSearch{Email: customer.Email})
	if err != nil {
		return err
	}

	var remoteID string
	if len(matches) > 0 {
		remoteID = matches[0].ID
	} else {
		created, err := s.gateway.InsertCustomer(ctx, remoteCustomerFrom(customer))
		if err != nil {
			return err
		}
		remoteID = created.ID
	}

	if err := customer.Link(remoteID); err != nil {
		result.Fail(customer.ID, fmt.Sprintf("remote returned unusable customer id %q", remoteID))
		return nil
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return err
	}

	result.ImportedCount++
	s.logger.Info("customer linked",
		zap.String("customer_id", customer.ID),
		zap.String("eskimo_id", remoteID),
	)
	return nil
}

// CustomerMatch is the outcome of a remote exists-by-email lookup
type CustomerMatch struct {
	Exists   bool   `json:"exists"`
	EskimoID string `json:"eskimo_id,omitempty"`
}

// CustomerExists checks whether the remote system holds a customer with the
// given email. It never creates or modifies anything.
func (s *Service) CustomerExists(ctx context.Context, email string) (*CustomerMatch, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", syncdomain.ErrValidation)
	}

	matches, err := s.gateway.SearchCustomers(ctx, syncdomain.CustomerSearch{Email: email})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &CustomerMatch{}, nil
	}
	return &CustomerMatch{Exists: true, EskimoID: matches[0].ID}, nil
}

// ensureCustomerLinked links the order's customer on demand during export.
// An order whose customer cannot be found falls back to the configured guest
// account; only when neither resolves to a remote mapping does the export
// fail with ErrCustomerNotMapped.
func (s *Service) ensureCustomerLinked(ctx context.Context, customerID string) (*trade.Customer, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return s.guestCustomer(ctx)
		}
		return nil, err
	}
	if customer.Linked() {
		return customer, nil
	}

	result := &syncdomain.Result{}
	if err := s.linkCustomer(ctx, customer, result); err != nil {
		return nil, err
	}
	if !customer.Linked() {
		return nil, syncdomain.ErrCustomerNotMapped
	}
	return customer, nil
}

// guestCustomer resolves the configured guest fallback account. The guest is
// linked on demand like any customer, and its mapping is verified against
// the remote before an order is filed under it.
func (s *Service) guestCustomer(ctx context.Context) (*trade.Customer, error) {
	if s.cfg.GuestCustomerID == "" {
		return nil, syncdomain.ErrCustomerNotMapped
	}

	guest, err := s.customers.FindByID(ctx, s.cfg.GuestCustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("configured guest customer not found",
				zap.String("customer_id", s.cfg.GuestCustomerID),
			)
			return nil, syncdomain.ErrCustomerNotMapped
		}
		return nil, err
	}

	if !guest.Linked() {
		result := &syncdomain.Result{}
		if err := s.linkCustomer(ctx, guest, result); err != nil {
			return nil, err
		}
		if !guest.Linked() {
			return nil, syncdomain.ErrCustomerNotMapped
		}
	}

	if _, err := s.gateway.CustomerByID(ctx, guest.EskimoID); err != nil {
		if errors.Is(err, syncdomain.ErrNoData) {
			s.logger.Warn("guest customer mapping unknown remotely",
				zap.String("eskimo_id", guest.EskimoID),
			)
			return nil, syncdomain.ErrCustomerNotMapped
		}
		return nil, err
	}
	return guest, nil
}

// remoteCustomerFrom builds the remote payload for a local customer
func remoteCustomerFrom(c *trade.Customer) syncdomain.RemoteCustomer {
	return syncdomain.RemoteCustomer{
		ID:        c.EskimoID,
		Email:     c.Email,
		FirstName: c.FirstName,
		Surname:   c.Surname,
		Company:   c.Company,
		Phone:     c.Phone,
		Address: syncdomain.RemoteAddress{
			Line1:    c.Billing.Line1,
			Line2:    c.Billing.Line2,
			City:     c.Billing.City,
			PostCode: c.Billing.PostCode,
			Country:  c.Billing.Country,
		},
	}
}
