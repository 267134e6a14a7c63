package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/cadastro/internal/services/registry/domain"
	"github.com/louisbranch/cadastro/internal/services/registry/storage"
	registrysqlite "github.com/louisbranch/cadastro/internal/services/registry/storage/sqlite"
)

func TestRunRegistersThenListsFromSameFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clientes.db")
	var prompt bytes.Buffer
	err := Run(context.Background(), Options{
		DBPath: path,
		Input:  strings.NewReader("Fulano de Tal\n123.456.789-09\nsair\n"),
		Output: &prompt,
	})
	if err != nil {
		t.Fatalf("run session: %v", err)
	}
	if !strings.Contains(prompt.String(), "Cliente cadastrado com sucesso!") {
		t.Fatalf("session output missing confirmation:\n%s", prompt.String())
	}

	var listing bytes.Buffer
	if err := Run(context.Background(), Options{DBPath: path, List: true, Output: &listing}); err != nil {
		t.Fatalf("run list: %v", err)
	}
	if got, want := listing.String(), "1\tFulano de Tal\t123.456.789-09\n"; got != want {
		t.Fatalf("listing = %q, want %q", got, want)
	}
}

func TestRunRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if err := Run(context.Background(), Options{DBPath: " ", List: true}); err == nil {
		t.Fatal("expected open error")
	}
}

func TestRunWithStoreRequiresInputForSession(t *testing.T) {
	t.Parallel()

	store := openMemoryStore(t)
	if err := RunWithStore(context.Background(), store, Options{}); err == nil {
		t.Fatal("expected missing input error")
	}
	if err := RunWithStore(context.Background(), nil, Options{List: true}); err == nil {
		t.Fatal("expected missing store error")
	}
}

func TestListCustomersEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		locale string
		asJSON bool
		want   string
	}{
		{name: "default locale", want: "Nenhum cliente cadastrado.\n"},
		{name: "english", locale: "en-US", want: "No customers registered.\n"},
		{name: "json prints nothing", asJSON: true, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := domain.NewService(openMemoryStore(t), domain.Options{})
			var out bytes.Buffer
			if err := ListCustomers(context.Background(), service, &out, tt.locale, tt.asJSON); err != nil {
				t.Fatalf("list: %v", err)
			}
			if out.String() != tt.want {
				t.Fatalf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestListCustomersJSONLines(t *testing.T) {
	t.Parallel()

	store := openMemoryStore(t)
	created := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	service := domain.NewService(store, domain.Options{Clock: func() time.Time { return created }})
	for _, entry := range []struct{ name, cpf string }{
		{"Ana", "12345678909"},
		{"Bia <b>", "529.982.247-25"},
	} {
		if _, err := service.Register(context.Background(), entry.name, entry.cpf); err != nil {
			t.Fatalf("register %s: %v", entry.name, err)
		}
	}

	var out bytes.Buffer
	if err := ListCustomers(context.Background(), service, &out, "", true); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), out.String())
	}
	var second customerJSON
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if second.Name != "Bia <b>" || second.CPF != "529.982.247-25" {
		t.Fatalf("record = %+v", second)
	}
	if second.CreatedAt != "2026-03-01T09:30:00.000Z" {
		t.Fatalf("created_at = %q", second.CreatedAt)
	}
	if !strings.Contains(lines[1], "<b>") {
		t.Fatalf("expected unescaped html in %q", lines[1])
	}
}

func TestListCustomersFollowsPages(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{pages: map[string]storage.CustomerPage{
		"":  {Customers: []storage.Customer{{ID: 1, Name: "Ana", CPF: "12345678909"}}, NextPageToken: "1"},
		"1": {Customers: []storage.Customer{{ID: 2, Name: "Bia", CPF: "52998224725"}}},
	}}
	var out bytes.Buffer
	if err := ListCustomers(context.Background(), lister, &out, "", false); err != nil {
		t.Fatalf("list: %v", err)
	}
	want := "1\tAna\t123.456.789-09\n2\tBia\t529.982.247-25\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if lister.calls != 2 {
		t.Fatalf("calls = %d, want 2", lister.calls)
	}
}

func TestListCustomersReturnsListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := ListCustomers(context.Background(), &pagedLister{err: boom}, &bytes.Buffer{}, "", false)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if err := ListCustomers(context.Background(), nil, &bytes.Buffer{}, "", false); err == nil {
		t.Fatal("expected missing lister error")
	}
}

type pagedLister struct {
	pages map[string]storage.CustomerPage
	err   error
	calls int
}

func (l *pagedLister) List(_ context.Context, _ int, pageToken string) (storage.CustomerPage, error) {
	l.calls++
	if l.err != nil {
		return storage.CustomerPage{}, l.err
	}
	return l.pages[pageToken], nil
}

func openMemoryStore(t *testing.T) *registrysqlite.Store {
	t.Helper()
	store, err := registrysqlite.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
