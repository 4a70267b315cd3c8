package chart

import (
	"slices"

	"hermannm.dev/enumnames"
)

type ChartType uint8

const (
	ChartTable ChartType = iota + 1
	ChartText
	ChartSingleBar
	ChartLine
	ChartStackedArea
	ChartStackedArea100
	ChartNestedBar
	ChartGroupedBar
	ChartStackedBar
	ChartStackedBar100
	ChartTreemap
	ChartHeatMap
	ChartChoroplethMap
)

var chartTypeNames = enumnames.NewMap(map[ChartType]string{
	ChartTable:          "table",
	ChartText:           "text",
	ChartSingleBar:      "single_bar_chart",
	ChartLine:           "line_chart",
	ChartStackedArea:    "stacked_area_chart",
	ChartStackedArea100: "stacked_area_chart_100",
	ChartNestedBar:      "nested_bar_chart",
	ChartGroupedBar:     "grouped_bar_chart",
	ChartStackedBar:     "stacked_bar_chart",
	ChartStackedBar100:  "stacked_bar_chart_100",
	ChartTreemap:        "treemap",
	ChartHeatMap:        "heat_map",
	ChartChoroplethMap:  "choropleth_map",
})

func (chartType ChartType) IsValid() bool {
	return chartTypeNames.GetNameOrFallback(chartType, "") != ""
}

func (chartType ChartType) String() string {
	return chartTypeNames.GetNameOrFallback(chartType, "INVALID_CHART_TYPE")
}

func (chartType ChartType) MarshalJSON() ([]byte, error) {
	return chartTypeNames.MarshalToNameJSON(chartType)
}

func (chartType *ChartType) UnmarshalJSON(bytes []byte) error {
	return chartTypeNames.UnmarshalFromNameJSON(bytes, chartType)
}

// Recommendation lists the admissible chart types in the order they were added, along with
// the preferred one. Ideal is always among Available.
type Recommendation struct {
	Available []ChartType `json:"availableChartTypes"`
	Ideal     ChartType   `json:"chartType"`
}

func (recommendation Recommendation) Has(chartType ChartType) bool {
	return slices.Contains(recommendation.Available, chartType)
}

// Only recommends a single chart type.
func Only(chartType ChartType) Recommendation {
	return Recommendation{Available: []ChartType{chartType}, Ideal: chartType}
}

func (recommendation *Recommendation) add(chartTypes ...ChartType) {
	for _, chartType := range chartTypes {
		if !recommendation.Has(chartType) {
			recommendation.Available = append(recommendation.Available, chartType)
		}
	}
}

func (recommendation *Recommendation) remove(chartTypes ...ChartType) {
	recommendation.Available = slices.DeleteFunc(
		recommendation.Available,
		func(chartType ChartType) bool { return slices.Contains(chartTypes, chartType) },
	)
}
