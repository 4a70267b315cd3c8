package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/query"
	"hermannm.dev/wrap"
)

func newRunCmd(cfg *config.Config) *cobra.Command {
	var latitude, longitude float64

	cmd := &cobra.Command{
		Use:   "run <definition.json>",
		Short: "Run one aggregation definition and print the response as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := readSpec(args[0])
			if err != nil {
				return err
			}

			app, err := newApp(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer app.store.Close()

			def, err := query.NewDefinition(app.catalog, spec)
			if err != nil {
				return err
			}

			var location *db.Location
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				location = &db.Location{Latitude: latitude, Longitude: longitude}
			}

			response, err := app.service.Run(cmd.Context(), def, location)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(response)
		},
	}

	cmd.Flags().Float64Var(&latitude, "lat", 0, "caller latitude")
	cmd.Flags().Float64Var(&longitude, "lon", 0, "caller longitude")

	return cmd
}

func readSpec(path string) (query.Spec, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return query.Spec{}, wrap.Errorf(err, "failed to read definition file '%s'", path)
	}

	var spec query.Spec
	if err := json.Unmarshal(content, &spec); err != nil {
		return query.Spec{}, wrap.Errorf(err, "failed to parse definition file '%s'", path)
	}
	return spec, nil
}
