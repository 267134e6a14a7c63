package domain

import (
	"context"
	"sort"
	"strconv"

	"github.com/louisbranch/cadastro/internal/services/registry/storage"
)

type fakeStore struct {
	byCPF     map[string]storage.Customer
	nextID    int64
	createErr error
	existsErr error
	created   []storage.Customer
}

func newFakeStore() *fakeStore {
	return &fakeStore{byCPF: map[string]storage.Customer{}}
}

func (f *fakeStore) CreateCustomer(_ context.Context, customer storage.Customer) (storage.Customer, error) {
	if f.createErr != nil {
		return storage.Customer{}, f.createErr
	}
	if _, ok := f.byCPF[customer.CPF]; ok {
		return storage.Customer{}, storage.ErrAlreadyExists
	}
	f.nextID++
	customer.ID = f.nextID
	f.byCPF[customer.CPF] = customer
	f.created = append(f.created, customer)
	return customer, nil
}

func (f *fakeStore) GetCustomerByCPF(_ context.Context, cpf string) (storage.Customer, error) {
	customer, ok := f.byCPF[cpf]
	if !ok {
		return storage.Customer{}, storage.ErrNotFound
	}
	return customer, nil
}

func (f *fakeStore) CustomerExists(_ context.Context, cpf string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byCPF[cpf]
	return ok, nil
}

func (f *fakeStore) ListCustomers(_ context.Context, pageSize int, pageToken string) (storage.CustomerPage, error) {
	all := make([]storage.Customer, 0, len(f.byCPF))
	for _, c := range f.byCPF {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	after, _ := strconv.ParseInt(pageToken, 10, 64)
	page := storage.CustomerPage{}
	for _, c := range all {
		if c.ID <= after {
			continue
		}
		if len(page.Customers) == pageSize {
			page.NextPageToken = strconv.FormatInt(page.Customers[pageSize-1].ID, 10)
			break
		}
		page.Customers = append(page.Customers, c)
	}
	return page, nil
}
