package chart

import (
	"slices"

	"hermannm.dev/vizquery/cardinality"
	"hermannm.dev/vizquery/query"
)

const DefaultCardinalityThreshold = 15

type Options struct {
	// Non-time dimensions with more distinct values than this are high-cardinality.
	CardinalityThreshold int
	// Aliases of measures whose values can be summed across groups.
	AdditiveMeasures []string
}

type Classifier struct {
	threshold        int
	additiveMeasures []string
}

func NewClassifier(options Options) Classifier {
	threshold := options.CardinalityThreshold
	if threshold <= 0 {
		threshold = DefaultCardinalityThreshold
	}
	return Classifier{threshold: threshold, additiveMeasures: slices.Clone(options.AdditiveMeasures)}
}

// Charts that become unreadable when every non-time dimension has high cardinality.
var clutteredCharts = []ChartType{
	ChartLine,
	ChartStackedArea,
	ChartStackedArea100,
	ChartGroupedBar,
	ChartStackedBar,
	ChartStackedBar100,
}

// Classify recommends chart types for a query result. It never fails: the fallback is a
// table.
func (classifier Classifier) Classify(
	def query.Definition,
	stats cardinality.Stats,
	rowCount int,
) Recommendation {
	if def.IsTextResponse() {
		return Only(ChartText)
	}
	if rowCount == 1 {
		return Only(ChartTable)
	}

	dimensions := def.Dimensions()
	measures := def.Measures()
	timeCount := len(def.TimeDimensions())
	geoDimensions := def.GeoDimensions()
	categoricalCount := len(def.CategoricalDimensions())

	if len(dimensions) > 2 || len(measures) == 0 {
		return Only(ChartTable)
	}

	allAdditive := classifier.allAdditive(measures)
	firstIsPointGeo := len(dimensions) != 0 && def.Catalog().IsPointGeo(dimensions[0])
	highCardinality := classifier.isHighCardinality(def, stats)

	recommendation := Only(ChartTable)

	if categoricalCount == 1 && timeCount == 0 && len(measures) == 1 && !firstIsPointGeo {
		recommendation.add(ChartSingleBar)
		recommendation.Ideal = ChartSingleBar
	}

	if timeCount == 1 && len(measures) == 1 {
		recommendation.add(ChartLine)
		recommendation.Ideal = ChartLine

		if categoricalCount == 1 && allAdditive {
			recommendation.add(ChartStackedArea, ChartStackedArea100)
			recommendation.Ideal = ChartStackedArea
		}
	}

	if len(dimensions) >= 1 && len(measures) <= 2 && (categoricalCount > 1 || len(measures) > 1) {
		recommendation.add(ChartNestedBar)
		recommendation.Ideal = ChartNestedBar
	}

	if categoricalCount == 2 && len(measures) == 1 {
		recommendation.add(ChartGroupedBar)
		recommendation.Ideal = ChartGroupedBar

		if allAdditive {
			recommendation.add(ChartStackedBar, ChartStackedBar100)
			recommendation.Ideal = ChartStackedBar
		}
	}

	if len(dimensions) >= 1 &&
		len(measures) == 1 &&
		allAdditive &&
		timeCount == 0 &&
		!def.IsTopN() &&
		!firstIsPointGeo {
		recommendation.add(ChartTreemap)
	}

	if len(geoDimensions) == 1 && len(dimensions) == 1 && len(measures) == 1 && allAdditive {
		if firstIsPointGeo {
			recommendation.add(ChartHeatMap)
			recommendation.remove(ChartTable)
			recommendation.Ideal = ChartHeatMap
		} else {
			recommendation.add(ChartChoroplethMap)
			recommendation.Ideal = ChartChoroplethMap
		}
	}

	if highCardinality {
		pruned := clutteredCharts
		if categoricalCount == 2 {
			pruned = append(slices.Clone(pruned), ChartTreemap)
		}
		recommendation.remove(pruned...)

		if slices.Contains(pruned, recommendation.Ideal) {
			recommendation.add(ChartTable)
			recommendation.Ideal = ChartTable
		}
	}

	return recommendation
}

func (classifier Classifier) allAdditive(measures []query.Measure) bool {
	for _, measure := range measures {
		if !slices.Contains(classifier.additiveMeasures, measure.Alias) {
			return false
		}
	}
	return true
}

// High cardinality requires every non-time dimension with known stats to exceed the
// threshold, and at least one such dimension.
func (classifier Classifier) isHighCardinality(def query.Definition, stats cardinality.Stats) bool {
	timeDimensions := def.TimeDimensions()

	checked := 0
	for _, dimension := range def.Dimensions() {
		if slices.Contains(timeDimensions, dimension) {
			continue
		}

		dimensionStats, ok := stats[dimension]
		if !ok {
			continue
		}
		if dimensionStats.TotalUnique <= classifier.threshold {
			return false
		}
		checked++
	}

	return checked > 0
}
