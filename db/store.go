package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/log"
	"hermannm.dev/wrap"
)

// Store owns the embedded DuckDB database that queries run against.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at config.Path, or an in-memory database if the path
// is empty. If config.ParquetURL is set, config.Table is created as a view over it.
func Open(ctx context.Context, config config.DuckDB) (*Store, error) {
	if config.Path != "" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, wrap.Errorf(err, "failed to create directory for database file '%s'", config.Path)
		}
	}

	sqlDB, err := sql.Open("duckdb", config.Path)
	if err != nil {
		return nil, wrap.Error(err, "failed to open DuckDB")
	}
	store := &Store{db: sqlDB, path: config.Path}

	if err := store.setup(ctx, config); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return store, nil
}

func (store *Store) setup(ctx context.Context, config config.DuckDB) error {
	if err := store.db.PingContext(ctx); err != nil {
		return wrap.Error(err, "failed to ping DuckDB")
	}

	if config.LoadSpatial {
		if err := store.Exec(ctx, "INSTALL spatial"); err != nil {
			return wrap.Error(err, "failed to install spatial extension")
		}
		if err := store.Exec(ctx, "LOAD spatial"); err != nil {
			return wrap.Error(err, "failed to load spatial extension")
		}
	}

	// Dimension values are grouped and filtered case-insensitively.
	if err := store.Exec(ctx, "SET GLOBAL default_collation = 'nocase'"); err != nil {
		return wrap.Error(err, "failed to set default collation")
	}

	if config.ParquetURL != "" {
		if err := store.CreateParquetView(ctx, config.Table, config.ParquetURL); err != nil {
			return err
		}
		log.Info(
			"created view over parquet source",
			"table", config.Table,
			"source", config.ParquetURL,
		)
	}

	return nil
}

// CreateParquetView (re)creates a view with the given name over a Parquet file or URL.
func (store *Store) CreateParquetView(ctx context.Context, name string, source string) error {
	if err := compiler.ValidateIdentifier(name); err != nil {
		return wrap.Error(err, "invalid view name")
	}

	var query compiler.QueryBuilder
	query.WriteString("CREATE OR REPLACE VIEW ")
	query.WriteIdentifier(name)
	query.WriteString(" AS SELECT * FROM read_parquet('")
	query.WriteString(strings.ReplaceAll(source, "'", "''"))
	query.WriteString("')")

	if err := store.Exec(ctx, query.String()); err != nil {
		return wrap.Errorf(err, "failed to create view '%s' over parquet source", name)
	}
	return nil
}

func (store *Store) Exec(ctx context.Context, statement string) error {
	_, err := store.db.ExecContext(ctx, statement)
	return err
}

func (store *Store) Close() error {
	return store.db.Close()
}
