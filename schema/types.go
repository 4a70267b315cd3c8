package schema

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
	"hermannm.dev/enumnames"
)

type DataType uint8

const (
	DataTypeText DataType = iota + 1
	DataTypeInt
	DataTypeFloat
	DataTypeDate
	DataTypeTimestamp
	DataTypeBool
	DataTypeGeometry
)

var dataTypeNames = enumnames.NewMap(map[DataType]string{
	DataTypeText:      "TEXT",
	DataTypeInt:       "INTEGER",
	DataTypeFloat:     "FLOAT",
	DataTypeDate:      "DATE",
	DataTypeTimestamp: "TIMESTAMP",
	DataTypeBool:      "BOOLEAN",
	DataTypeGeometry:  "GEOMETRY",
})

func (dataType DataType) IsValid() bool {
	return dataTypeNames.GetNameOrFallback(dataType, "") != ""
}

func (dataType DataType) String() string {
	return dataTypeNames.GetNameOrFallback(dataType, "INVALID_DATA_TYPE")
}

func (dataType DataType) MarshalJSON() ([]byte, error) {
	return dataTypeNames.MarshalToNameJSON(dataType)
}

func (dataType *DataType) UnmarshalJSON(bytes []byte) error {
	return dataTypeNames.UnmarshalFromNameJSON(bytes, dataType)
}

func (dataType *DataType) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalYAMLName(node, dataType.UnmarshalJSON)
}

type Role uint8

const (
	RoleDimension Role = iota + 1
	RoleMeasure
)

var roleNames = enumnames.NewMap(map[Role]string{
	RoleDimension: "DIMENSION",
	RoleMeasure:   "MEASURE",
})

func (role Role) IsValid() bool {
	return roleNames.GetNameOrFallback(role, "") != ""
}

func (role Role) String() string {
	return roleNames.GetNameOrFallback(role, "INVALID_ROLE")
}

func (role Role) MarshalJSON() ([]byte, error) {
	return roleNames.MarshalToNameJSON(role)
}

func (role *Role) UnmarshalJSON(bytes []byte) error {
	return roleNames.UnmarshalFromNameJSON(bytes, role)
}

func (role *Role) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalYAMLName(node, role.UnmarshalJSON)
}

// Classification decides which dimension group a field lands in. Geo fields are
// categorical as well.
type Classification uint8

const (
	ClassificationTime Classification = iota + 1
	ClassificationGeo
	ClassificationCategorical
)

var classificationNames = enumnames.NewMap(map[Classification]string{
	ClassificationTime:        "TIME",
	ClassificationGeo:         "GEO",
	ClassificationCategorical: "CATEGORICAL",
})

func (classification Classification) IsValid() bool {
	return classificationNames.GetNameOrFallback(classification, "") != ""
}

func (classification Classification) String() string {
	return classificationNames.GetNameOrFallback(classification, "INVALID_CLASSIFICATION")
}

func (classification Classification) MarshalJSON() ([]byte, error) {
	return classificationNames.MarshalToNameJSON(classification)
}

func (classification *Classification) UnmarshalJSON(bytes []byte) error {
	return classificationNames.UnmarshalFromNameJSON(bytes, classification)
}

func (classification *Classification) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalYAMLName(node, classification.UnmarshalJSON)
}

type GeoGranularity uint8

const (
	// Raw coordinates.
	GeoGranularityPoint GeoGranularity = iota + 1
	// Borough, county, neighborhood, zip code.
	GeoGranularityAreal
)

var geoGranularityNames = enumnames.NewMap(map[GeoGranularity]string{
	GeoGranularityPoint: "POINT",
	GeoGranularityAreal: "AREAL",
})

func (granularity GeoGranularity) IsValid() bool {
	return geoGranularityNames.GetNameOrFallback(granularity, "") != ""
}

func (granularity GeoGranularity) String() string {
	return geoGranularityNames.GetNameOrFallback(granularity, "INVALID_GEO_GRANULARITY")
}

func (granularity GeoGranularity) MarshalJSON() ([]byte, error) {
	return geoGranularityNames.MarshalToNameJSON(granularity)
}

func (granularity *GeoGranularity) UnmarshalJSON(bytes []byte) error {
	return geoGranularityNames.UnmarshalFromNameJSON(bytes, granularity)
}

func (granularity *GeoGranularity) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalYAMLName(node, granularity.UnmarshalJSON)
}

// Enum names are stored the same way in YAML and JSON, so YAML scalars are routed through
// the JSON name lookup.
func unmarshalYAMLName(node *yaml.Node, unmarshalJSON func([]byte) error) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}

	bytes, err := json.Marshal(name)
	if err != nil {
		return err
	}
	return unmarshalJSON(bytes)
}
