package db

import (
	"context"
	"database/sql"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/log"
	"hermannm.dev/wrap"
)

const maskedCoordinate = "[MASKED_COORDINATE]"

type ExecutorOptions struct {
	Timeout    time.Duration
	MaxQueries int64
}

// Executor runs compiled queries against the store. It holds no per-request state, and
// caller locations never outlive a single Execute call.
type Executor struct {
	db      *sql.DB
	slots   *semaphore.Weighted
	timeout time.Duration
}

func NewExecutor(store *Store, options ExecutorOptions) *Executor {
	maxQueries := options.MaxQueries
	if maxQueries <= 0 {
		maxQueries = 1
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Executor{
		db:      store.db,
		slots:   semaphore.NewWeighted(maxQueries),
		timeout: timeout,
	}
}

// ExecutionError is returned when the engine rejects or fails to run a query. Its message
// and SQL have caller coordinates masked, so both are safe to log.
type ExecutionError struct {
	SQL     string
	message string
	cause   error
}

func (err ExecutionError) Error() string {
	return "query execution failed: " + err.message
}

func (err ExecutionError) Unwrap() error {
	return err.cause
}

// Execute runs the query once, substituting the caller location into any placeholders. If
// the query needs a location and none is given, it returns StatusLocationRequired without
// touching the database.
func (executor *Executor) Execute(
	ctx context.Context,
	compiled compiler.CompiledQuery,
	location *Location,
) (Outcome, error) {
	needsLocation := len(compiled.Placeholders) != 0 ||
		len(compiler.FindPlaceholders(compiled.SQL)) != 0
	if needsLocation && location == nil {
		return Outcome{Status: StatusLocationRequired}, nil
	}

	sqlText := compiled.SQL
	var coordinates []string
	if needsLocation {
		sqlText, coordinates = substituteLocation(sqlText, *location)
	}

	result, err := executor.run(ctx, sqlText, compiled)
	if err != nil {
		execErr := ExecutionError{
			SQL:     mask(sqlText, coordinates),
			message: mask(err.Error(), coordinates),
			cause:   err,
		}
		log.Error(execErr, "", "sql", execErr.SQL)
		return Outcome{}, execErr
	}

	if needsLocation {
		log.Info("location-based query executed", "rows", len(result.Rows))
	} else {
		log.Info("query executed", "rows", len(result.Rows))
	}

	return Outcome{Status: StatusSuccess, Result: result}, nil
}

func (executor *Executor) run(
	ctx context.Context,
	sqlText string,
	compiled compiler.CompiledQuery,
) (Result, error) {
	if err := executor.slots.Acquire(ctx, 1); err != nil {
		return Result{}, wrap.Error(err, "failed to acquire query slot")
	}
	defer executor.slots.Release(1)

	ctx, cancel := context.WithTimeout(ctx, executor.timeout)
	defer cancel()

	rows, err := executor.db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, wrap.Error(err, "failed to get result columns")
	}

	result := Result{Fields: make([]string, 0, len(columns)), Rows: []Row{}}
	for _, column := range columns {
		if !compiled.IsMetadataColumn(column) {
			result.Fields = append(result.Fields, column)
		}
	}

	metadataRow := make(map[string]any, len(compiled.Metadata))
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return Result{}, wrap.Error(err, "failed to scan result row")
		}

		row := make(Row, len(result.Fields))
		for i, column := range columns {
			value := normalizeValue(values[i])
			if compiled.IsMetadataColumn(column) {
				if len(result.Rows) == 0 {
					metadataRow[column] = value
				}
			} else {
				row[column] = value
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, wrap.Error(err, "failed to read result rows")
	}

	if len(result.Rows) != 0 {
		result.Metadata = parseMetadata(metadataRow, compiled.Metadata)
	}

	return result, nil
}

// Coordinates are written as parenthesized literals, so a '-' in front of a placeholder
// never forms a '--' comment with a negative value.
func substituteLocation(sqlText string, location Location) (substituted string, coordinates []string) {
	latitude := strconv.FormatFloat(location.Latitude, 'f', -1, 64)
	longitude := strconv.FormatFloat(location.Longitude, 'f', -1, 64)

	for _, substitution := range []struct {
		token compiler.PlaceholderToken
		value string
	}{
		{compiler.PlaceholderUserLatitude, "(" + latitude + ")"},
		{compiler.PlaceholderUserLongitude, "(" + longitude + ")"},
	} {
		for _, form := range substitution.token.Forms() {
			sqlText = strings.ReplaceAll(sqlText, form, substitution.value)
		}
	}

	return sqlText, []string{latitude, longitude}
}

// mask replaces the substituted literals first, then any bare coordinate the engine may have
// echoed, longest first so that one coordinate contained in another cannot leave digits behind.
func mask(text string, coordinates []string) string {
	for _, coordinate := range coordinates {
		text = strings.ReplaceAll(text, "("+coordinate+")", maskedCoordinate)
	}

	bare := slices.Clone(coordinates)
	slices.SortFunc(bare, func(a, b string) int { return len(b) - len(a) })
	for _, coordinate := range bare {
		text = strings.ReplaceAll(text, coordinate, maskedCoordinate)
	}
	return text
}
