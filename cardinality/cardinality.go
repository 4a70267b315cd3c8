package cardinality

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"hermannm.dev/vizquery/db"
	"hermannm.dev/vizquery/query"
)

type DimensionStats struct {
	TotalUnique    int     `json:"totalUnique"`
	MinPerGroup    int     `json:"minPerGroup"`
	MaxPerGroup    int     `json:"maxPerGroup"`
	AvgPerGroup    float64 `json:"avgPerGroup"`
	MedianPerGroup float64 `json:"medianPerGroup"`
	StdPerGroup    float64 `json:"stdPerGroup"`
}

type Stats map[string]DimensionStats

type valueSet map[string]struct{}

type dimensionState struct {
	unique valueSet
	// Distinct values of the dimension per combination of the other dimensions.
	groups map[string]valueSet
}

// Analyze computes distinct-value statistics for each dimension in one pass over the rows.
// Null values are not counted. Returns an empty map if there are no rows or dimensions.
func Analyze(rows []db.Row, dimensions []string) Stats {
	stats := make(Stats, len(dimensions))
	if len(rows) == 0 || len(dimensions) == 0 {
		return stats
	}

	states := make([]dimensionState, len(dimensions))
	for i := range states {
		states[i] = dimensionState{unique: valueSet{}, groups: map[string]valueSet{}}
	}

	keys := make([]string, len(dimensions))
	for _, row := range rows {
		for i, dimension := range dimensions {
			keys[i] = valueKey(row[dimension])
		}

		for i, dimension := range dimensions {
			value := row[dimension]

			group := groupKey(keys, i)
			groupValues, ok := states[i].groups[group]
			if !ok {
				groupValues = valueSet{}
				states[i].groups[group] = groupValues
			}

			if value == nil {
				continue
			}
			states[i].unique[keys[i]] = struct{}{}
			groupValues[keys[i]] = struct{}{}
		}
	}

	for i, dimension := range dimensions {
		totalUnique := len(states[i].unique)

		if len(dimensions) == 1 {
			stats[dimension] = DimensionStats{
				TotalUnique:    totalUnique,
				MinPerGroup:    totalUnique,
				MaxPerGroup:    totalUnique,
				AvgPerGroup:    float64(totalUnique),
				MedianPerGroup: float64(totalUnique),
			}
			continue
		}

		counts := make([]int, 0, len(states[i].groups))
		for _, groupValues := range states[i].groups {
			counts = append(counts, len(groupValues))
		}
		stats[dimension] = summarize(totalUnique, counts)
	}

	return stats
}

func summarize(totalUnique int, counts []int) DimensionStats {
	slices.Sort(counts)

	var sum float64
	for _, count := range counts {
		sum += float64(count)
	}
	mean := sum / float64(len(counts))

	var squaredDiffs float64
	for _, count := range counts {
		diff := float64(count) - mean
		squaredDiffs += diff * diff
	}

	middle := len(counts) / 2
	median := float64(counts[middle])
	if len(counts)%2 == 0 {
		median = float64(counts[middle-1]+counts[middle]) / 2
	}

	return DimensionStats{
		TotalUnique:    totalUnique,
		MinPerGroup:    counts[0],
		MaxPerGroup:    counts[len(counts)-1],
		AvgPerGroup:    mean,
		MedianPerGroup: median,
		StdPerGroup:    math.Sqrt(squaredDiffs / float64(len(counts))),
	}
}

// Type-tagged, so that e.g. the string "1" and the integer 1 stay distinct.
func valueKey(value any) string {
	if value == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T:%v", value, value)
}

func groupKey(keys []string, exclude int) string {
	var builder strings.Builder
	for i, key := range keys {
		if i == exclude {
			continue
		}
		builder.WriteString(key)
		builder.WriteByte(0)
	}
	return builder.String()
}

// Reorder sorts dimensions by descending total unique count, keeping the original order for
// ties. Dimensions missing from stats count as 0. Reordering an already sorted definition
// returns it unchanged.
func Reorder(def query.Definition, stats Stats) query.Definition {
	dimensions := def.Dimensions()
	if len(dimensions) <= 1 || len(stats) == 0 {
		return def
	}

	sorted := slices.Clone(dimensions)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(stats[b].TotalUnique, stats[a].TotalUnique)
	})
	if slices.Equal(sorted, dimensions) {
		return def
	}

	reordered, err := def.WithReorderedDimensions(sorted)
	if err != nil {
		// Sorting only permutes the dimensions, so this is unreachable.
		return def
	}
	return reordered
}
