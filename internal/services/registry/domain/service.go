// Package domain holds customer registration rules.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/cadastro/internal/platform/errors"
	"github.com/louisbranch/cadastro/internal/services/registry/storage"
)

// Options configures the registration service.
type Options struct {
	// StrictCPF additionally requires valid mod-11 check digits.
	StrictCPF bool
	// Clock supplies creation timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Service exposes registration operations over a customer store.
type Service struct {
	store     storage.CustomerStore
	strictCPF bool
	clock     func() time.Time
}

// NewService builds a registration service backed by store.
func NewService(store storage.CustomerStore, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, strictCPF: opts.StrictCPF, clock: clock}
}

// ValidateCPF checks a trimmed CPF against the active rules.
func (s *Service) ValidateCPF(cpf string) error {
	if !ValidCPFFormat(cpf) {
		return apperrors.WithMetadata(apperrors.CodeCPFInvalidFormat, "cpf has invalid format", map[string]string{"CPF": cpf})
	}
	if s.strictCPF && !ValidCPFCheckDigits(cpf) {
		return apperrors.WithMetadata(apperrors.CodeCPFInvalidCheckDigits, "cpf check digits do not match", map[string]string{"CPF": cpf})
	}
	return nil
}

// Register validates and persists one customer. The stored CPF holds digits only.
func (s *Service) Register(ctx context.Context, name, cpf string) (storage.Customer, error) {
	name = strings.TrimSpace(name)
	cpf = strings.TrimSpace(cpf)
	if name == "" {
		return storage.Customer{}, apperrors.New(apperrors.CodeCustomerNameEmpty, "customer name is required")
	}
	if err := s.ValidateCPF(cpf); err != nil {
		return storage.Customer{}, err
	}

	created, err := s.store.CreateCustomer(ctx, storage.Customer{
		Name:      name,
		CPF:       NormalizeCPF(cpf),
		CreatedAt: s.clock().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.Customer{}, apperrors.WrapWithMetadata(
				apperrors.CodeCustomerCPFDuplicate,
				"customer cpf already registered",
				map[string]string{"CPF": FormatCPF(NormalizeCPF(cpf))},
				err,
			)
		}
		return storage.Customer{}, fmt.Errorf("register customer: %w", err)
	}
	return created, nil
}

// Exists reports whether a customer with this CPF is registered, in any
// accepted layout. Input without digits is never registered.
func (s *Service) Exists(ctx context.Context, cpf string) (bool, error) {
	digits := NormalizeCPF(cpf)
	if digits == "" {
		return false, nil
	}
	exists, err := s.store.CustomerExists(ctx, digits)
	if err != nil {
		return false, fmt.Errorf("check customer cpf: %w", err)
	}
	return exists, nil
}

// Lookup returns the customer registered under cpf.
func (s *Service) Lookup(ctx context.Context, cpf string) (storage.Customer, error) {
	digits := NormalizeCPF(cpf)
	if digits == "" {
		return storage.Customer{}, apperrors.New(apperrors.CodeNotFound, "customer not found")
	}
	customer, err := s.store.GetCustomerByCPF(ctx, digits)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Customer{}, apperrors.Wrap(apperrors.CodeNotFound, "customer not found", err)
		}
		return storage.Customer{}, fmt.Errorf("lookup customer: %w", err)
	}
	return customer, nil
}

// List returns one page of customers ordered by ID.
func (s *Service) List(ctx context.Context, pageSize int, pageToken string) (storage.CustomerPage, error) {
	page, err := s.store.ListCustomers(ctx, pageSize, pageToken)
	if err != nil {
		return storage.CustomerPage{}, fmt.Errorf("list customers: %w", err)
	}
	return page, nil
}
