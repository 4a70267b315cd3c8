package db

import (
	"hermannm.dev/enumnames"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Row map[string]any

type Result struct {
	Fields   []string `json:"fields"`
	Rows     []Row    `json:"rows"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	// Min and max of the catalog's created field, as YYYY-MM-DD.
	CreatedDateRange []string                `json:"createdDateRange,omitempty"`
	Statistics       map[string]MeasureStats `json:"statistics,omitempty"`
	ResultExceedsCap bool                    `json:"resultExceedsCap"`
	// Representative value per coarser geography field, e.g. the borough of a zip code.
	ReferenceFields map[string]string `json:"referenceFields,omitempty"`
}

type MeasureStats struct {
	Avg    *float64 `json:"avg"`
	Median *float64 `json:"median"`
	StdDev *float64 `json:"stddev"`
	// Tuples of dimension values followed by the measure value.
	Top3    [][]any `json:"top3,omitempty"`
	Bottom3 [][]any `json:"bottom3,omitempty"`
}

type Status uint8

const (
	StatusSuccess Status = iota + 1
	// The query filters on the caller's location, but none was given.
	StatusLocationRequired
)

var statusNames = enumnames.NewMap(map[Status]string{
	StatusSuccess:          "SUCCESS",
	StatusLocationRequired: "LOCATION_REQUIRED",
})

func (status Status) IsValid() bool {
	return statusNames.GetNameOrFallback(status, "") != ""
}

func (status Status) String() string {
	return statusNames.GetNameOrFallback(status, "INVALID_STATUS")
}

func (status Status) MarshalJSON() ([]byte, error) {
	return statusNames.MarshalToNameJSON(status)
}

func (status *Status) UnmarshalJSON(bytes []byte) error {
	return statusNames.UnmarshalFromNameJSON(bytes, status)
}

// Outcome of an execution that did not fail. Result is only set on StatusSuccess.
type Outcome struct {
	Status Status
	Result Result
}
