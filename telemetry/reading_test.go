// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package telemetry_test

import (
	"testing"

	"github.com/ranjhana07/MINE/telemetry"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	r := telemetry.RawFields{}.Resolve()
	require.Equal(t, telemetry.Reading{
		HeartRate:   -1,
		SpO2:        -1,
		Temperature: -1.0,
		Humidity:    -1.0,
	}, r)
}

func TestResolveKeepsProvidedValues(t *testing.T) {
	r := telemetry.RawFields{
		HeartRate: i(0),
		Stress:    i(1),
		Humidity:  f64(0),
		Lat:       f64(-33.9),
	}.Resolve()

	require.Equal(t, 0, r.HeartRate)
	require.Equal(t, 1, r.Stress)
	require.Equal(t, 0.0, r.Humidity)
	require.Equal(t, -33.9, r.Lat)
	require.Equal(t, -1.0, r.Temperature)
}

func TestSeriesNames(t *testing.T) {
	require.Equal(t, []telemetry.Group{
		telemetry.Gas,
		telemetry.Health,
		telemetry.Environmental,
		telemetry.GPS,
	}, telemetry.Groups())

	require.Equal(t, []string{"LPG", "CH4", "Propane", "Butane", "H2"},
		telemetry.SeriesNames(telemetry.Gas))
	require.Equal(t, []string{"heartRate", "spo2", "GSR", "stress"},
		telemetry.SeriesNames(telemetry.Health))
	require.Equal(t, []string{"temperature", "humidity"},
		telemetry.SeriesNames(telemetry.Environmental))
	require.Equal(t, []string{"lat", "lon", "alt", "sat"},
		telemetry.SeriesNames(telemetry.GPS))
}
