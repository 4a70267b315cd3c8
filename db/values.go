package db

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"hermannm.dev/vizquery/compiler"
	"hermannm.dev/vizquery/log"
)

const dateFormat = "2006-01-02"

// normalizeValue converts driver values into plain JSON-friendly values.
func normalizeValue(value any) any {
	switch value := value.(type) {
	case time.Time:
		return value.Format(dateFormat)
	case []byte:
		return string(value)
	case *big.Int:
		if value.IsInt64() {
			return value.Int64()
		}
		float, _ := new(big.Float).SetInt(value).Float64()
		return float
	case duckdb.Decimal:
		return value.Float64()
	default:
		return value
	}
}

func parseMetadata(values map[string]any, columns []compiler.MetadataColumn) Metadata {
	var metadata Metadata
	var minCreated, maxCreated string

	for _, column := range columns {
		value, ok := values[column.Name]
		if !ok {
			continue
		}

		switch column.Kind {
		case compiler.MetadataAvg, compiler.MetadataMedian, compiler.MetadataStdDev:
			stats := metadata.measureStats(column.Measure)
			number, ok := toFloat(value)
			if !ok {
				break
			}
			switch column.Kind {
			case compiler.MetadataAvg:
				stats.Avg = &number
			case compiler.MetadataMedian:
				stats.Median = &number
			default:
				stats.StdDev = &number
			}
			metadata.Statistics[column.Measure] = stats
		case compiler.MetadataTop3, compiler.MetadataBottom3:
			tuples, ok := parseTuples(value, column.Name)
			if !ok {
				break
			}
			stats := metadata.measureStats(column.Measure)
			if column.Kind == compiler.MetadataTop3 {
				stats.Top3 = tuples
			} else {
				stats.Bottom3 = tuples
			}
			metadata.Statistics[column.Measure] = stats
		case compiler.MetadataExceedsCap:
			exceeds, _ := value.(bool)
			metadata.ResultExceedsCap = exceeds
		case compiler.MetadataMinCreated:
			minCreated = toText(value)
		case compiler.MetadataMaxCreated:
			maxCreated = toText(value)
		case compiler.MetadataReference:
			if value == nil {
				break
			}
			if metadata.ReferenceFields == nil {
				metadata.ReferenceFields = make(map[string]string)
			}
			metadata.ReferenceFields[column.Field] = toText(value)
		}
	}

	if minCreated != "" || maxCreated != "" {
		metadata.CreatedDateRange = []string{minCreated, maxCreated}
	}

	return metadata
}

func (metadata *Metadata) measureStats(measure string) MeasureStats {
	if metadata.Statistics == nil {
		metadata.Statistics = make(map[string]MeasureStats)
	}
	return metadata.Statistics[measure]
}

func toFloat(value any) (float64, bool) {
	switch value := value.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int64:
		return float64(value), true
	case int32:
		return float64(value), true
	case int:
		return float64(value), true
	default:
		return 0, false
	}
}

func toText(value any) string {
	switch value := value.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func parseTuples(value any, column string) ([][]any, bool) {
	text, ok := value.(string)
	if !ok || text == "" {
		return nil, false
	}

	var tuples [][]any
	if err := json.Unmarshal([]byte(text), &tuples); err != nil {
		log.Warn("failed to parse top/bottom tuples from metadata column", "column", column, "error", err)
		return nil, false
	}
	return tuples, true
}
