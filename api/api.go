package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/pipeline"
	"hermannm.dev/vizquery/schema"
)

type VizQueryAPI struct {
	service *pipeline.Service
	catalog *schema.Catalog
	router  chi.Router
	config  config.API
}

func NewVizQueryAPI(
	service *pipeline.Service,
	catalog *schema.Catalog,
	config config.API,
) VizQueryAPI {
	api := VizQueryAPI{service: service, catalog: catalog, router: chi.NewRouter(), config: config}

	api.router.Use(middleware.Recoverer)
	api.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	api.router.Get("/health", api.Health)
	api.router.Get("/schema", api.GetSchema)
	api.router.Post("/query", api.RunQuery)

	return api
}

func (api VizQueryAPI) Handler() http.Handler {
	return api.router
}

func (api VizQueryAPI) ListenAndServe() error {
	return http.ListenAndServe(fmt.Sprintf(":%s", api.config.Port), api.router)
}

func (api VizQueryAPI) Health(res http.ResponseWriter, req *http.Request) {
	sendJSON(res, map[string]string{"status": "ok"})
}
