// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package telemetry

import (
	"strconv"
	"time"
)

// Group names one of the four fixed partitions of a combined reading.
type Group string

const (
	Gas           Group = "gas"
	Health        Group = "health"
	Environmental Group = "environmental"
	GPS           Group = "gps"
)

// Series names, matching the wire field names.
const (
	SeriesLPG     = "LPG"
	SeriesCH4     = "CH4"
	SeriesPropane = "Propane"
	SeriesButane  = "Butane"
	SeriesH2      = "H2"

	SeriesHeartRate = "heartRate"
	SeriesSpO2      = "spo2"
	SeriesGSR       = "GSR"
	SeriesStress    = "stress"

	SeriesTemperature = "temperature"
	SeriesHumidity    = "humidity"

	SeriesLat = "lat"
	SeriesLon = "lon"
	SeriesAlt = "alt"
	SeriesSat = "sat"
)

type (
	// Sample is one windowed value. Valid is false for the absent marker,
	// which is distinct from a reading of zero.
	Sample struct {
		Value float64
		Valid bool
	}

	// Latest is the most recent raw reading and its ingestion time. A zero
	// Timestamp means nothing has been ingested yet.
	Latest struct {
		Reading
		Timestamp time.Time `json:"timestamp"`
	}

	// GroupView is an independent point-in-time copy of a channel group.
	// Every slice in Series has the same length as Timestamps.
	GroupView struct {
		Group      Group               `json:"group"`
		Timestamps []time.Time         `json:"timestamps"`
		Series     map[string][]Sample `json:"series"`
		Latest     Latest              `json:"latest"`
	}

	seriesDef struct {
		name  string
		value func(Reading) Sample
	}
)

// Fixed ordering of groups and their series.
var (
	groups = []Group{Gas, Health, Environmental, GPS}

	layout = map[Group][]seriesDef{
		Gas: {
			{SeriesLPG, func(r Reading) Sample { return present(r.LPG) }},
			{SeriesCH4, func(r Reading) Sample { return present(r.CH4) }},
			{SeriesPropane, func(r Reading) Sample { return present(r.Propane) }},
			{SeriesButane, func(r Reading) Sample { return present(r.Butane) }},
			{SeriesH2, func(r Reading) Sample { return present(r.H2) }},
		},
		Health: {
			{SeriesHeartRate, func(r Reading) Sample {
				return orAbsent(float64(r.HeartRate))
			}},
			{SeriesSpO2, func(r Reading) Sample { return orAbsent(r.SpO2) }},
			{SeriesGSR, func(r Reading) Sample { return present(float64(r.GSR)) }},
			{SeriesStress, func(r Reading) Sample {
				return present(float64(r.Stress))
			}},
		},
		Environmental: {
			{SeriesTemperature, func(r Reading) Sample {
				return orAbsent(r.Temperature)
			}},
			{SeriesHumidity, func(r Reading) Sample { return orAbsent(r.Humidity) }},
		},
		GPS: {
			{SeriesLat, func(r Reading) Sample { return present(r.Lat) }},
			{SeriesLon, func(r Reading) Sample { return present(r.Lon) }},
			{SeriesAlt, func(r Reading) Sample { return present(r.Alt) }},
			{SeriesSat, func(r Reading) Sample { return present(float64(r.Sat)) }},
		},
	}
)

// Groups returns the four channel groups in their fixed order.
func Groups() []Group {
	return append([]Group(nil), groups...)
}

// SeriesNames returns the series of a group in their fixed order, or nil for
// an unknown group.
func SeriesNames(g Group) []string {
	defs, ok := layout[g]
	if !ok {
		return nil
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.name
	}
	return names
}

func present(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

func orAbsent(v float64) Sample {
	if v == AbsentFloat {
		return Sample{}
	}
	return present(v)
}

// Absent reports whether s is the absent marker.
func (s Sample) Absent() bool {
	return !s.Valid
}

// MarshalJSON encodes the absent marker as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, s.Value, 'g', -1, 64), nil
}

// Len returns the number of entries in the window.
func (v GroupView) Len() int {
	return len(v.Timestamps)
}

// Newest returns the newest sample of the named series.
func (v GroupView) Newest(series string) (Sample, bool) {
	s := v.Series[series]
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}
