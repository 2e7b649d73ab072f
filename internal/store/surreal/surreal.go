// Package surreal implements the store contract on SurrealDB. Documents
// marshal through the surrealcbor codec so typed IDs become native record
// IDs and time.Time fields become native datetimes. Multi-record steps run
// as transactions inside a single Query RPC.
package surreal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/workplane-dev/workplane/internal/store"
)

// Throw markers used inside transactions. The driver surfaces a THROW as a
// query error containing the thrown string, which translate maps back onto
// the store's sentinel errors.
const (
	throwOverlap = "sprint dates overlap"
	throwMissing = "record missing"
)

type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

type Store struct {
	db *surrealdb.DB
}

var _ store.Store = (*Store)(nil)

// New connects to SurrealDB over WebSocket with the surrealcbor codec.
// Without the codec, time.Time and record ID values do not survive the
// round trip to the database.
func New(ctx context.Context, cfg Config) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)

	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

// notFound reports whether err is the driver's way of signalling that a
// select produced zero rows.
func notFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

// translate wraps a driver error, converting throw markers and empty-select
// failures into the store's sentinel errors.
func translate(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, throwOverlap):
		return fmt.Errorf("%s: %w", op, store.ErrSprintOverlap)
	case strings.Contains(msg, throwMissing), notFound(err):
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// lastResult extracts the rows of the final statement in a query response.
// Transactions emit one result entry per statement; only the last one
// carries the rows we asked for.
func lastResult[T any](res *[]surrealdb.QueryResult[T]) T {
	var zero T
	if res == nil || len(*res) == 0 {
		return zero
	}
	return (*res)[len(*res)-1].Result
}

// getRecord selects a single document by record ID.
func getRecord[T any](ctx context.Context, s *Store, rid surrealdb_models.RecordID, op string) (*T, error) {
	doc, err := surrealdb.Select[T](ctx, s.db, rid)
	if err != nil {
		return nil, translate(op, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return doc, nil
}

// mergeRecord applies a partial-field patch, failing with ErrNotFound when
// the target does not exist. UPDATE only touches existing records, so the
// returned row count distinguishes a merge from a miss.
func mergeRecord[T any](ctx context.Context, s *Store, rid surrealdb_models.RecordID, fields map[string]any, op string) error {
	result, err := surrealdb.Query[[]T](ctx, s.db, "UPDATE $record MERGE $patch", map[string]any{
		"record": rid,
		"patch":  fields,
	})
	if err != nil {
		return translate(op, err)
	}
	if len(lastResult(result)) == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

// deleteRecord removes a document, failing with ErrNotFound when it was
// already gone.
func deleteRecord[T any](ctx context.Context, s *Store, rid surrealdb_models.RecordID, op string) error {
	result, err := surrealdb.Query[[]T](ctx, s.db, "DELETE $record RETURN BEFORE", map[string]any{
		"record": rid,
	})
	if err != nil {
		return translate(op, err)
	}
	if len(lastResult(result)) == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

// updateLinks runs a single link-array mutation against a parent record and
// reports ErrNotFound when the parent does not exist.
func updateLinks[T any](ctx context.Context, s *Store, query string, params map[string]any, op string) error {
	result, err := surrealdb.Query[[]T](ctx, s.db, query, params)
	if err != nil {
		return translate(op, err)
	}
	if len(lastResult(result)) == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}
