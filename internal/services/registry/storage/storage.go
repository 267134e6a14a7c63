// Package storage defines persistence contracts for registry customers.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested customer record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a customer with the same CPF already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Customer stores one registered customer. CPF holds digits only.
type Customer struct {
	ID        int64
	Name      string
	CPF       string
	CreatedAt time.Time
}

// CustomerPage stores one page of customer records ordered by ID.
type CustomerPage struct {
	Customers     []Customer
	NextPageToken string
}

// CustomerStore persists customer records.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer Customer) (Customer, error)
	GetCustomerByCPF(ctx context.Context, cpf string) (Customer, error)
	CustomerExists(ctx context.Context, cpf string) (bool, error)
	ListCustomers(ctx context.Context, pageSize int, pageToken string) (CustomerPage, error)
}
