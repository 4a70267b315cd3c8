package schema

// DefaultCatalog is the NYC 311 service request catalog served by the requests_311 view.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog("created_date", defaultFields()...)
	if err != nil {
		panic(err)
	}
	return catalog
}

func defaultFields() []Field {
	fields := make([]Field, 0, 40)

	for _, name := range []string{
		"created_date", "closed_date",
		"created_week", "closed_week",
		"created_month", "closed_month",
		"created_year", "closed_year",
	} {
		dataType := DataTypeDate
		if name == "created_date" || name == "closed_date" {
			dataType = DataTypeTimestamp
		}
		fields = append(fields, timeDimension(name, dataType))
	}

	for _, name := range []string{
		"created_year_datepart", "created_month_datepart",
		"created_day_datepart", "created_hour_datepart",
		"closed_year_datepart", "closed_month_datepart",
		"closed_day_datepart", "closed_hour_datepart",
	} {
		fields = append(fields, timeDimension(name, DataTypeInt))
	}

	fields = append(
		fields,
		Field{
			Name:           "borough",
			Role:           RoleDimension,
			DataType:       DataTypeText,
			Classification: ClassificationGeo,
			Granularity:    GeoGranularityAreal,
		},
		Field{
			Name:           "county",
			Role:           RoleDimension,
			DataType:       DataTypeText,
			Classification: ClassificationGeo,
			Granularity:    GeoGranularityAreal,
		},
		Field{
			Name:            "neighborhood_name",
			Role:            RoleDimension,
			DataType:        DataTypeText,
			Classification:  ClassificationGeo,
			Granularity:     GeoGranularityAreal,
			ReferenceFields: []string{"borough"},
		},
		Field{
			Name:            "incident_zip",
			Role:            RoleDimension,
			DataType:        DataTypeText,
			Classification:  ClassificationGeo,
			Granularity:     GeoGranularityAreal,
			ReferenceFields: []string{"borough"},
		},
		Field{
			Name:            "location",
			Role:            RoleDimension,
			DataType:        DataTypeGeometry,
			Classification:  ClassificationGeo,
			Granularity:     GeoGranularityPoint,
			ReferenceFields: []string{"borough", "neighborhood_name"},
		},
	)

	for _, name := range []string{
		"complaint_type_large",
		"complaint_type_middle",
		"status",
		"agency_name",
		"agency_category",
		"community_board",
		"location_type",
		"address_type",
		"open_data_channel_type",
	} {
		fields = append(fields, categoricalDimension(name, ""))
	}

	fields = append(
		fields,
		categoricalDimension("created_weekday_datepart", "created_weekday_order"),
		categoricalDimension("closed_weekday_datepart", "closed_weekday_order"),
		categoricalDimension("time_to_resolve_day_bin", "time_to_resolve_day_bin"),
		Field{Name: "num_of_requests", Role: RoleMeasure, DataType: DataTypeInt},
		Field{Name: "avg_days_to_resolve", Role: RoleMeasure, DataType: DataTypeFloat},
		Field{Name: "population", Role: RoleMeasure, DataType: DataTypeInt},
	)

	return fields
}

func timeDimension(name string, dataType DataType) Field {
	return Field{
		Name:           name,
		Role:           RoleDimension,
		DataType:       dataType,
		Classification: ClassificationTime,
	}
}

func categoricalDimension(name string, sortBy string) Field {
	return Field{
		Name:           name,
		Role:           RoleDimension,
		DataType:       DataTypeText,
		Classification: ClassificationCategorical,
		SortBy:         sortBy,
	}
}
