package binding

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ardnew/criteria/lang"
	"github.com/ardnew/criteria/log"
)

// Store persists variable bindings in a SQLite database. It implements
// [lang.Resolver] for variables only; function references resolve to
// [lang.None].
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	logger log.Logger
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithStoreLogger sets the logger that reports failed lookups.
func WithStoreLogger(logger log.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// OpenStore opens (creating if needed) the database at path. Use ":memory:"
// for a private in-memory database.
func OpenStore(path string, opts ...StoreOption) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ErrStore.Wrap(err).With(slog.String("path", path))
	}

	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bindings (
			name  TEXT PRIMARY KEY,
			kind  TEXT NOT NULL,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()

		return nil, ErrStore.Wrap(err).With(slog.String("path", path))
	}

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Put binds name to v, replacing any previous binding. Binding
// [lang.None] deletes name.
func (s *Store) Put(ctx context.Context, name string, v lang.Value) error {
	if v.IsNone() {
		return s.Delete(ctx, name)
	}

	kind, text, err := encode(v)
	if err != nil {
		return ErrInvalidBinding.Wrap(err).With(slog.String("name", name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO bindings (name, kind, value) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kind = excluded.kind,
			value = excluded.value
	`, name, kind, text); err != nil {
		return ErrStore.Wrap(err).With(slog.String("name", name))
	}

	return nil
}

// Get returns the value bound to name, or [lang.None] if there is none.
func (s *Store) Get(ctx context.Context, name string) (lang.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return lang.None(), ErrStoreClosed
	}

	var kind, text string

	err := s.db.QueryRowContext(ctx,
		`SELECT kind, value FROM bindings WHERE name = ?`, name,
	).Scan(&kind, &text)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return lang.None(), nil
	case err != nil:
		return lang.None(), ErrStore.Wrap(err).With(slog.String("name", name))
	}

	return decode(kind, text)
}

// Delete removes the binding of name, if any.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM bindings WHERE name = ?`, name,
	); err != nil {
		return ErrStore.Wrap(err).With(slog.String("name", name))
	}

	return nil
}

// Names returns the bound names in sorted order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM bindings ORDER BY name`)
	if err != nil {
		return nil, ErrStore.Wrap(err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ErrStore.Wrap(err)
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrStore.Wrap(err)
	}

	return names, nil
}

// Close closes the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	return s.db.Close()
}

// HandleVariable implements [lang.Resolver].
func (s *Store) HandleVariable(name string) lang.Value {
	v, err := s.Get(log.DefaultContextProvider(), name)
	if err != nil {
		s.logger.Warn("lookup failed",
			slog.String("name", name), slog.Any("error", err))

		return lang.None()
	}

	return v
}

// HandleFunction implements [lang.Resolver].
func (*Store) HandleFunction(string, []lang.Value) lang.Value {
	return lang.None()
}

func encode(v lang.Value) (kind, text string, err error) {
	if !v.Kind().IsOperand() {
		return "", "", lang.ErrTypeMismatch.With(slog.String("kind", v.Kind().String()))
	}

	switch x := v.Native().(type) {
	case bool:
		text = strconv.FormatBool(x)
	case int64:
		text = strconv.FormatInt(x, 10)
	case string:
		text = x
	}

	return v.Kind().String(), text, nil
}

func decode(kind, text string) (lang.Value, error) {
	var err error

	switch kind {
	case lang.KindBoolean.String():
		var b bool
		if b, err = strconv.ParseBool(text); err == nil {
			return lang.Bool(b), nil
		}
	case lang.KindNumber.String():
		var n int64
		if n, err = strconv.ParseInt(text, 10, 64); err == nil {
			return lang.Int(n), nil
		}
	case lang.KindString.String():
		return lang.Str(text), nil
	}

	return lang.None(), ErrStore.Wrap(err).With(
		slog.String("kind", kind), slog.String("value", text))
}
