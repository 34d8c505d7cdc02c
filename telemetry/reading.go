// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package telemetry

// Reserved "no reading" sentinels for heartRate, spo2, temperature and
// humidity.
const (
	AbsentInt   int     = -1
	AbsentFloat float64 = -1.0
)

type (
	// RawFields is one decoded inbound message. A nil field was not present
	// on the wire; Resolve applies the documented default for it.
	RawFields struct {
		LPG     *float64 `json:"LPG,omitempty"`
		CH4     *float64 `json:"CH4,omitempty"`
		Propane *float64 `json:"Propane,omitempty"`
		Butane  *float64 `json:"Butane,omitempty"`
		H2      *float64 `json:"H2,omitempty"`

		HeartRate *int     `json:"heartRate,omitempty"`
		SpO2      *float64 `json:"spo2,omitempty"`
		GSR       *int     `json:"GSR,omitempty"`
		Stress    *int     `json:"stress,omitempty"`

		Temperature *float64 `json:"temperature,omitempty"`
		Humidity    *float64 `json:"humidity,omitempty"`

		Lat *float64 `json:"lat,omitempty"`
		Lon *float64 `json:"lon,omitempty"`
		Alt *float64 `json:"alt,omitempty"`
		Sat *int     `json:"sat,omitempty"`
	}

	// Reading is a RawFields with every default resolved. It holds the raw
	// values, sentinels included.
	Reading struct {
		LPG     float64 `json:"LPG"`
		CH4     float64 `json:"CH4"`
		Propane float64 `json:"Propane"`
		Butane  float64 `json:"Butane"`
		H2      float64 `json:"H2"`

		HeartRate int     `json:"heartRate"`
		SpO2      float64 `json:"spo2"`
		GSR       int     `json:"GSR"`
		Stress    int     `json:"stress"`

		Temperature float64 `json:"temperature"`
		Humidity    float64 `json:"humidity"`

		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
		Alt float64 `json:"alt"`
		Sat int     `json:"sat"`
	}
)

// Resolve applies the per-field defaults: -1 for heartRate and spo2, -1.0
// for temperature and humidity, zero for everything else.
func (r RawFields) Resolve() Reading {
	return Reading{
		LPG:     orFloat(r.LPG, 0),
		CH4:     orFloat(r.CH4, 0),
		Propane: orFloat(r.Propane, 0),
		Butane:  orFloat(r.Butane, 0),
		H2:      orFloat(r.H2, 0),

		HeartRate: orInt(r.HeartRate, AbsentInt),
		SpO2:      orFloat(r.SpO2, float64(AbsentInt)),
		GSR:       orInt(r.GSR, 0),
		Stress:    orInt(r.Stress, 0),

		Temperature: orFloat(r.Temperature, AbsentFloat),
		Humidity:    orFloat(r.Humidity, AbsentFloat),

		Lat: orFloat(r.Lat, 0),
		Lon: orFloat(r.Lon, 0),
		Alt: orFloat(r.Alt, 0),
		Sat: orInt(r.Sat, 0),
	}
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
