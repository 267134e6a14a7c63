// Package sqlite provides a SQLite-backed customer storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/cadastro/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/cadastro/internal/platform/timeouts"
	"github.com/louisbranch/cadastro/internal/services/registry/storage"
	"github.com/louisbranch/cadastro/internal/services/registry/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var dsnPragmas = fmt.Sprintf(
	"_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
	timeouts.SQLiteBusy.Milliseconds(),
)

// Store persists customers in SQLite. The table layout matches databases
// written by earlier releases (table cliente, columns nome/cpf).
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite customer store at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	return prepare(ctx, sqlDB)
}

// OpenMemory opens a private in-memory store. The pool is pinned to one
// connection because every SQLite :memory: connection is a separate database.
func OpenMemory(ctx context.Context) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return prepare(ctx, sqlDB)
}

// buildDSN appends the connection pragmas to path. A file: URI keeps its own
// query parameters; a plain path may not contain '?'.
func buildDSN(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("storage path is required")
	}
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&" + dsnPragmas, nil
		}
		return path + "?" + dsnPragmas, nil
	}
	if strings.Contains(path, "?") {
		return "", fmt.Errorf("storage path %q must not contain '?'; use a file: URI for query parameters", path)
	}
	return filepath.Clean(path) + "?" + dsnPragmas, nil
}

func prepare(ctx context.Context, sqlDB *sql.DB) (*Store, error) {
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateCustomer inserts one customer and returns it with its assigned ID.
func (s *Store) CreateCustomer(ctx context.Context, customer storage.Customer) (storage.Customer, error) {
	if err := ctx.Err(); err != nil {
		return storage.Customer{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Customer{}, fmt.Errorf("storage is not configured")
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.CPF = strings.TrimSpace(customer.CPF)
	if customer.Name == "" {
		return storage.Customer{}, fmt.Errorf("customer name is required")
	}
	if customer.CPF == "" {
		return storage.Customer{}, fmt.Errorf("customer cpf is required")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	customer.CreatedAt = fromMillis(toMillis(customer.CreatedAt))

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO cliente (nome, cpf, created_at) VALUES (?, ?, ?)`,
		customer.Name,
		customer.CPF,
		toMillis(customer.CreatedAt),
	)
	if err != nil {
		if isCPFUniqueViolation(err) {
			return storage.Customer{}, storage.ErrAlreadyExists
		}
		return storage.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.Customer{}, fmt.Errorf("create customer: read id: %w", err)
	}
	customer.ID = id
	return customer, nil
}

// GetCustomerByCPF returns the customer stored under a digits-only CPF.
func (s *Store) GetCustomerByCPF(ctx context.Context, cpf string) (storage.Customer, error) {
	if err := ctx.Err(); err != nil {
		return storage.Customer{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Customer{}, fmt.Errorf("storage is not configured")
	}
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return storage.Customer{}, fmt.Errorf("customer cpf is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, nome, cpf, created_at FROM cliente WHERE cpf = ?`,
		cpf,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Customer{}, storage.ErrNotFound
		}
		return storage.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

// CustomerExists reports whether a digits-only CPF is registered.
func (s *Store) CustomerExists(ctx context.Context, cpf string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	var found int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM cliente WHERE cpf = ?`, strings.TrimSpace(cpf)).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check customer: %w", err)
	}
	return true, nil
}

// ListCustomers returns one page of customers ordered by ID. The page token
// is the last ID of the previous page.
func (s *Store) ListCustomers(ctx context.Context, pageSize int, pageToken string) (storage.CustomerPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CustomerPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CustomerPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.CustomerPage{}, fmt.Errorf("page size must be greater than zero")
	}
	var afterID int64
	if token := strings.TrimSpace(pageToken); token != "" {
		parsed, err := strconv.ParseInt(token, 10, 64)
		if err != nil || parsed < 0 {
			return storage.CustomerPage{}, fmt.Errorf("invalid page token %q", token)
		}
		afterID = parsed
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, nome, cpf, created_at
		   FROM cliente
		  WHERE id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		afterID,
		pageSize+1,
	)
	if err != nil {
		return storage.CustomerPage{}, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	page := storage.CustomerPage{Customers: make([]storage.Customer, 0, pageSize)}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return storage.CustomerPage{}, fmt.Errorf("list customers: %w", err)
		}
		page.Customers = append(page.Customers, customer)
	}
	if err := rows.Err(); err != nil {
		return storage.CustomerPage{}, fmt.Errorf("list customers: %w", err)
	}
	if len(page.Customers) > pageSize {
		page.NextPageToken = strconv.FormatInt(page.Customers[pageSize-1].ID, 10)
		page.Customers = page.Customers[:pageSize]
	}
	return page, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (storage.Customer, error) {
	var customer storage.Customer
	var createdAt int64
	if err := row.Scan(&customer.ID, &customer.Name, &customer.CPF, &createdAt); err != nil {
		return storage.Customer{}, err
	}
	customer.CreatedAt = fromMillis(createdAt)
	return customer, nil
}

func isCPFUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE &&
			strings.Contains(strings.ToLower(err.Error()), "cliente.cpf")
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "cliente.cpf")
}

var _ storage.CustomerStore = (*Store)(nil)
