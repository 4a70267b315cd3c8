package pipeline

import (
	"context"

	"github.com/google/uuid"
	"hermannm.dev/vizquery/cardinality"
	"hermannm.dev/vizquery/chart"
	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/log"
	"hermannm.dev/vizquery/query"
	"hermannm.dev/wrap"
)

type Executor interface {
	Execute(
		ctx context.Context,
		compiled compiler.CompiledQuery,
		location *db.Location,
	) (db.Outcome, error)
}

// Service runs a definition through compile, execute, cardinality analysis, dimension
// reordering and chart classification.
type Service struct {
	compiler   compiler.Compiler
	executor   Executor
	classifier chart.Classifier
	table      string
}

func NewService(
	compiler compiler.Compiler,
	executor Executor,
	classifier chart.Classifier,
	table string,
) *Service {
	return &Service{compiler: compiler, executor: executor, classifier: classifier, table: table}
}

// Response is the payload handed on to insight generation.
type Response struct {
	RequestID      string            `json:"requestId"`
	Status         db.Status         `json:"status"`
	SQL            string            `json:"sql"`
	Fields         []string          `json:"fields"`
	Rows           []db.Row          `json:"dataset"`
	Metadata       db.Metadata       `json:"queryMetadata"`
	DimensionStats cardinality.Stats `json:"dimensionStats"`
	chart.Recommendation
	Definition query.Definition `json:"aggregationDefinition"`
}

// Run returns a CompileError for invalid definitions and an ExecutionError if the query
// fails. A missing caller location is not an error, but a response with
// StatusLocationRequired.
func (service *Service) Run(
	ctx context.Context,
	def query.Definition,
	location *db.Location,
) (Response, error) {
	requestID := uuid.NewString()[:8]

	response := Response{
		RequestID:      requestID,
		Status:         db.StatusSuccess,
		Fields:         []string{},
		Rows:           []db.Row{},
		DimensionStats: cardinality.Stats{},
		Definition:     def,
	}

	if def.IsTextResponse() {
		response.Recommendation = chart.Only(chart.ChartText)
		return response, nil
	}

	compiled, err := service.compiler.Compile(def, service.table)
	if err != nil {
		return Response{}, err
	}
	response.SQL = compiled.SQL
	log.Debug("compiled query", "requestId", requestID, "sql", compiled.SQL)

	outcome, err := service.executor.Execute(ctx, compiled, location)
	if err != nil {
		return Response{}, wrap.Errorf(err, "request %s", requestID)
	}

	if outcome.Status == db.StatusLocationRequired {
		log.Info("query needs caller location, none given", "requestId", requestID)
		response.Status = db.StatusLocationRequired
		response.Recommendation = chart.Only(chart.ChartText)
		return response, nil
	}

	result := outcome.Result
	response.Rows = result.Rows
	response.Metadata = result.Metadata

	if len(result.Rows) == 0 {
		log.Info("query returned no rows", "requestId", requestID)
		response.Fields = def.Fields()
		response.Recommendation = chart.Only(chart.ChartText)
		return response, nil
	}

	stats := cardinality.Analyze(result.Rows, def.Dimensions())
	if dateRange := result.Metadata.CreatedDateRange; len(dateRange) == 2 {
		def = def.WithCreatedDateRange(dateRange[0], dateRange[1])
	}
	def = cardinality.Reorder(def, stats)

	response.DimensionStats = stats
	response.Definition = def
	response.Fields = def.Fields()
	response.Recommendation = service.classifier.Classify(def, stats, len(result.Rows))

	log.Info(
		"query processed",
		"requestId", requestID,
		"rows", len(result.Rows),
		"chartType", response.Ideal.String(),
	)

	return response, nil
}
