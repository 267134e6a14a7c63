// Package app wires the registry store, service and prompt for one process.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/louisbranch/cadastro/internal/platform/i18n/catalog"
	"github.com/louisbranch/cadastro/internal/services/registry/domain"
	"github.com/louisbranch/cadastro/internal/services/registry/session"
	"github.com/louisbranch/cadastro/internal/services/registry/storage"
	registrysqlite "github.com/louisbranch/cadastro/internal/services/registry/storage/sqlite"
)

const listPageSize = 100

// Options configures one registry run.
type Options struct {
	DBPath    string
	Locale    string
	StrictCPF bool
	// List prints the registered customers instead of prompting.
	List bool
	// JSON switches listing output to one JSON object per line.
	JSON      bool
	SessionID string
	Input     io.Reader
	Output    io.Writer
}

// Run opens the store once and either lists customers or drives the prompt
// until the user quits.
func Run(ctx context.Context, opts Options) error {
	store, err := registrysqlite.Open(ctx, opts.DBPath)
	if err != nil {
		return fmt.Errorf("open registry store: %w", err)
	}
	defer store.Close()

	return RunWithStore(ctx, store, opts)
}

// RunWithStore behaves like Run over an already opened store.
func RunWithStore(ctx context.Context, store storage.CustomerStore, opts Options) error {
	if store == nil {
		return errors.New("customer store is required")
	}
	service := domain.NewService(store, domain.Options{StrictCPF: opts.StrictCPF})
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	if opts.List {
		return ListCustomers(ctx, service, out, opts.Locale, opts.JSON)
	}

	prompt, err := session.New(service, session.Options{
		Input:     opts.Input,
		Output:    out,
		Locale:    opts.Locale,
		SessionID: opts.SessionID,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return prompt.Run(ctx)
}

// Lister pages through registered customers.
type Lister interface {
	List(ctx context.Context, pageSize int, pageToken string) (storage.CustomerPage, error)
}

type customerJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ListCustomers writes every customer ordered by ID. Text rows are
// "ID<TAB>name<TAB>formatted CPF"; an empty registry prints a localized notice.
func ListCustomers(ctx context.Context, lister Lister, out io.Writer, locale string, asJSON bool) error {
	if lister == nil {
		return errors.New("customer lister is required")
	}
	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)

	written := 0
	token := ""
	for {
		page, err := lister.List(ctx, listPageSize, token)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		for _, customer := range page.Customers {
			if err := writeCustomer(out, encoder, customer, asJSON); err != nil {
				return err
			}
			written++
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	if written == 0 && !asJSON {
		bundle := catalog.Default()
		notice, _ := bundle.Message(bundle.Resolve(locale), "session.list.empty")
		if _, err := fmt.Fprintln(out, notice); err != nil {
			return err
		}
	}
	return nil
}

func writeCustomer(out io.Writer, encoder *json.Encoder, customer storage.Customer, asJSON bool) error {
	if asJSON {
		record := customerJSON{
			ID:   customer.ID,
			Name: customer.Name,
			CPF:  domain.FormatCPF(customer.CPF),
		}
		if !customer.CreatedAt.IsZero() {
			record.CreatedAt = customer.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
		}
		return encoder.Encode(record)
	}
	_, err := fmt.Fprintf(out, "%s\t%s\t%s\n", strconv.FormatInt(customer.ID, 10), customer.Name, domain.FormatCPF(customer.CPF))
	return err
}
