package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/cadastro/internal/platform/errors"
	"github.com/louisbranch/cadastro/internal/services/registry/storage"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
}

func TestRegisterStoresDigitsOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, Options{Clock: fixedClock})

	got, err := svc.Register(context.Background(), "  Fulano de Tal ", " 111.222.333-44 ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("id = %d, want 1", got.ID)
	}
	if got.Name != "Fulano de Tal" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.CPF != "11122233344" {
		t.Fatalf("cpf = %q, want digits only", got.CPF)
	}
	if !got.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("created_at = %v", got.CreatedAt)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  [2]string
		strict bool
		code   apperrors.Code
	}{
		{name: "empty name", input: [2]string{"   ", "123.456.789-09"}, code: apperrors.CodeCustomerNameEmpty},
		{name: "bad format", input: [2]string{"Ana", "123"}, code: apperrors.CodeCPFInvalidFormat},
		{name: "letters", input: [2]string{"Ana", "123.abc.789-09"}, code: apperrors.CodeCPFInvalidFormat},
		{name: "strict check digits", input: [2]string{"Ana", "111.222.333-44"}, strict: true, code: apperrors.CodeCPFInvalidCheckDigits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewService(store, Options{StrictCPF: tt.strict})
			_, err := svc.Register(context.Background(), tt.input[0], tt.input[1])
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (err=%v)", got, tt.code, err)
			}
			if len(store.created) != 0 {
				t.Fatal("invalid input must not be stored")
			}
		})
	}
}

func TestRegisterAcceptsBadCheckDigitsWhenNotStrict(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), Options{})
	if _, err := svc.Register(context.Background(), "Ana", "111.222.333-44"); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), Options{})
	if _, err := svc.Register(context.Background(), "Beltrano Silva", "999.888.777-66"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(context.Background(), "Outro", "99988877766")
	if !apperrors.HasCode(err, apperrors.CodeCustomerCPFDuplicate) {
		t.Fatalf("err = %v, want duplicate code", err)
	}
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatal("expected storage sentinel in chain")
	}
	if got := apperrors.UserMessage(err, "pt-BR"); got != "CPF 999.888.777-66 já cadastrado." {
		t.Fatalf("user message = %q", got)
	}
}

func TestRegisterWrapsStorageFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.createErr = errors.New("disk full")
	svc := NewService(store, Options{})

	_, err := svc.Register(context.Background(), "Ana", "123.456.789-09")
	if err == nil || !errors.Is(err, store.createErr) {
		t.Fatalf("err = %v, want wrapped disk full", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeUnknown {
		t.Fatal("storage failures carry no domain code")
	}
}

func TestExistsMatchesAnyLayout(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), Options{})
	if _, err := svc.Register(context.Background(), "Beltrano Silva", "999.888.777-66"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, cpf := range []string{"999.888.777-66", "99988877766", "999888777-66"} {
		exists, err := svc.Exists(context.Background(), cpf)
		if err != nil {
			t.Fatalf("exists %q: %v", cpf, err)
		}
		if !exists {
			t.Fatalf("expected %q to be registered", cpf)
		}
	}

	exists, err := svc.Exists(context.Background(), "000.000.000-00")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("unregistered cpf must not be reported")
	}
	if exists, _ := svc.Exists(context.Background(), "abc"); exists {
		t.Fatal("input without digits is never registered")
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), Options{})
	created, err := svc.Register(context.Background(), "Ciclano Santos", "555.444.333-22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Lookup(context.Background(), "55544433322")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != created.ID || got.Name != "Ciclano Santos" || got.CPF != "55544433322" {
		t.Fatalf("lookup = %+v", got)
	}

	_, err = svc.Lookup(context.Background(), "000.000.000-00")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListPaginates(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(), Options{})
	for _, cpf := range []string{"11111111100", "22222222200", "33333333300"} {
		if _, err := svc.Register(context.Background(), "Cliente "+cpf, cpf); err != nil {
			t.Fatalf("register %s: %v", cpf, err)
		}
	}

	first, err := svc.List(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Customers) != 2 || first.NextPageToken == "" {
		t.Fatalf("first page = %+v", first)
	}
	second, err := svc.List(context.Background(), 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second.Customers) != 1 || second.NextPageToken != "" {
		t.Fatalf("second page = %+v", second)
	}
}
