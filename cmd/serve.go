package cmd

import (
	"github.com/spf13/cobra"
	"hermannm.dev/vizquery/api"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/log"
	"hermannm.dev/wrap"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Info("opening DuckDB", "path", cfg.DuckDB.Path, "table", cfg.DuckDB.Table)
			app, err := newApp(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer app.store.Close()

			vizQueryAPI := api.NewVizQueryAPI(app.service, app.catalog, cfg.API)

			log.Infof("listening on port %s", cfg.API.Port)
			if err := vizQueryAPI.ListenAndServe(); err != nil {
				return wrap.Error(err, "server stopped")
			}
			return nil
		},
	}
}
