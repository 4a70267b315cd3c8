package cmd

import (
	"context"
	"os"

	"hermannm.dev/vizquery/chart"
	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/pipeline"
	"hermannm.dev/vizquery/schema"
	"hermannm.dev/wrap"
)

type app struct {
	store   *db.Store
	catalog *schema.Catalog
	service *pipeline.Service
}

func newApp(ctx context.Context, cfg config.Config) (app, error) {
	catalog, err := loadCatalog(cfg.Query.SchemaCatalogFile)
	if err != nil {
		return app{}, err
	}

	store, err := db.Open(ctx, cfg.DuckDB)
	if err != nil {
		return app{}, wrap.Error(err, "failed to open DuckDB")
	}

	service := pipeline.NewService(
		compiler.New(catalog, compiler.Options{RowCap: cfg.Query.RowCap}),
		db.NewExecutor(store, db.ExecutorOptions{
			Timeout:    cfg.DuckDB.Timeout,
			MaxQueries: cfg.DuckDB.MaxQueries,
		}),
		chart.NewClassifier(chart.Options{
			CardinalityThreshold: cfg.Query.CardinalityThreshold,
			AdditiveMeasures:     cfg.Query.AdditiveMeasures,
		}),
		cfg.DuckDB.Table,
	)

	return app{store: store, catalog: catalog, service: service}, nil
}

func loadCatalog(path string) (*schema.Catalog, error) {
	if path == "" {
		return schema.DefaultCatalog(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, wrap.Errorf(err, "failed to open schema catalog file '%s'", path)
	}
	defer file.Close()

	return schema.LoadYAML(file)
}
