package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"hermannm.dev/wrap"
)

type Config struct {
	BaseConfig
	DuckDB DuckDB
	Query  Query
}

type BaseConfig struct {
	IsProduction bool        `env:"PRODUCTION"  envDefault:"false"`
	LogLevel     string      `env:"LOG_LEVEL"   envDefault:"info"`
	DB           SupportedDB `env:"DATABASE"    envDefault:"duckdb"`
	API          API
}

type API struct {
	Port           string   `env:"API_PORT"        envDefault:"8000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://127.0.0.1:5500" envSeparator:","`
}

type DuckDB struct {
	// Empty path opens an in-memory database.
	Path        string        `env:"DUCKDB_PATH"          envDefault:""`
	Table       string        `env:"DUCKDB_TABLE"         envDefault:"requests_311"`
	ParquetURL  string        `env:"DUCKDB_PARQUET_URL"   envDefault:""`
	LoadSpatial bool          `env:"DUCKDB_LOAD_SPATIAL"  envDefault:"false"`
	Timeout     time.Duration `env:"QUERY_TIMEOUT"        envDefault:"30s"`
	MaxQueries  int64         `env:"MAX_CONCURRENT_QUERIES" envDefault:"8"`
}

type Query struct {
	RowCap               int      `env:"ROW_CAP"               envDefault:"5000"`
	CardinalityThreshold int      `env:"CARDINALITY_THRESHOLD" envDefault:"15"`
	AdditiveMeasures     []string `env:"ADDITIVE_MEASURES"     envDefault:"num_of_requests,population" envSeparator:","`
	SchemaCatalogFile    string   `env:"SCHEMA_CATALOG_FILE"   envDefault:""`
}

type SupportedDB string

const (
	DBDuckDB SupportedDB = "duckdb"
)

func ReadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, wrap.Error(err, "failed to load .env file")
	}

	parseOptions := env.Options{RequiredIfNoDef: true}

	var config Config

	if err := env.ParseWithOptions(&config.BaseConfig, parseOptions); err != nil {
		return Config{}, err
	}

	switch config.DB {
	case DBDuckDB:
		if err := env.ParseWithOptions(&config.DuckDB, parseOptions); err != nil {
			return Config{}, err
		}
	default:
		err := fmt.Errorf("must be one of: '%s'", DBDuckDB)
		return Config{}, wrap.Errorf(err, "unsupported value '%s' for DATABASE in env", config.DB)
	}

	if err := env.ParseWithOptions(&config.Query, parseOptions); err != nil {
		return Config{}, err
	}

	if errs := config.validate(); len(errs) != 0 {
		return Config{}, wrap.Errors("invalid environment variables", errs...)
	}

	return config, nil
}

func (config Config) validate() []error {
	var errs []error

	if config.DuckDB.Table == "" {
		errs = append(errs, errors.New("DUCKDB_TABLE cannot be blank"))
	}
	if config.DuckDB.MaxQueries <= 0 {
		errs = append(errs, errors.New("MAX_CONCURRENT_QUERIES must be positive"))
	}
	if config.DuckDB.Timeout <= 0 {
		errs = append(errs, errors.New("QUERY_TIMEOUT must be positive"))
	}
	if config.Query.RowCap <= 0 {
		errs = append(errs, errors.New("ROW_CAP must be positive"))
	}
	if config.Query.CardinalityThreshold < 0 {
		errs = append(errs, errors.New("CARDINALITY_THRESHOLD cannot be negative"))
	}

	return errs
}
