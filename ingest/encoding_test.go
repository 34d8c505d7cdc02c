// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest_test

import (
	"testing"

	"github.com/ranjhana07/MINE/ingest"
	"github.com/ranjhana07/MINE/telemetry"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) telemetry.RawFields {
	t.Helper()
	raw, err := ingest.JSON{}.Deserialize(&ingest.Data{Payload: []byte(payload)})
	require.NoError(t, err)
	return raw
}

func TestDecodeFullPayload(t *testing.T) {
	raw := decode(t, `{
		"LPG": 12.5, "CH4": 3.0, "Propane": 1.1, "Butane": 0.4, "H2": 0.2,
		"heartRate": 72, "spo2": 98.5,
		"temperature": 26.4, "humidity": 55.0,
		"GSR": 10, "stress": 0,
		"lat": 12.345678, "lon": 77.654321, "alt": 900.0, "sat": 7
	}`)

	r := raw.Resolve()
	require.Equal(t, 12.5, r.LPG)
	require.Equal(t, 0.2, r.H2)
	require.Equal(t, 72, r.HeartRate)
	require.Equal(t, 98.5, r.SpO2)
	require.Equal(t, 26.4, r.Temperature)
	require.Equal(t, 55.0, r.Humidity)
	require.Equal(t, 10, r.GSR)
	require.NotNil(t, raw.Stress)
	require.Equal(t, 0, r.Stress)
	require.Equal(t, 77.654321, r.Lon)
	require.Equal(t, 7, r.Sat)
}

func TestDecodeMissingKeysStayNil(t *testing.T) {
	raw := decode(t, `{"LPG": 1.0, "lat": 10.0, "lon": 20.0}`)

	require.Equal(t, 1.0, *raw.LPG)
	require.Nil(t, raw.CH4)
	require.Nil(t, raw.HeartRate)
	require.Nil(t, raw.Temperature)
	require.Nil(t, raw.Sat)

	r := raw.Resolve()
	require.Equal(t, telemetry.AbsentInt, r.HeartRate)
	require.Equal(t, telemetry.AbsentFloat, r.Humidity)
	require.Equal(t, 0.0, r.Alt)
}

func TestDecodeEmptyObject(t *testing.T) {
	require.Equal(t, telemetry.RawFields{}, decode(t, `{}`))
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	raw := decode(t, `{"battery": 88, "nested": {"lat": 1}, "lat": 2.5}`)
	require.Equal(t, 2.5, *raw.Lat)
}

func TestDecodeIsCaseSensitive(t *testing.T) {
	raw := decode(t, `{"lpg": 5.0, "HeartRate": 80}`)
	require.Nil(t, raw.LPG)
	require.Nil(t, raw.HeartRate)
}

func TestDecodeCoercion(t *testing.T) {
	raw := decode(t, `{
		"heartRate": 72.0, "sat": true, "GSR": false,
		"LPG": true, "CH4": "3.0", "spo2": null, "temperature": [1]
	}`)

	require.Equal(t, 72, *raw.HeartRate)
	require.Equal(t, 1, *raw.Sat)
	require.Equal(t, 0, *raw.GSR)
	require.Equal(t, 1.0, *raw.LPG)
	require.Nil(t, raw.CH4)
	require.Nil(t, raw.SpO2)
	require.Nil(t, raw.Temperature)
}

func TestDecodeIntegerFieldsRejectInexactValues(t *testing.T) {
	for payload, field := range map[string]func(telemetry.RawFields) *int{
		`{"heartRate": 71.9}`: func(r telemetry.RawFields) *int { return r.HeartRate },
		`{"heartRate": -1.5}`: func(r telemetry.RawFields) *int { return r.HeartRate },
		`{"heartRate": 1e19}`: func(r telemetry.RawFields) *int { return r.HeartRate },
		`{"sat": 1e30}`:       func(r telemetry.RawFields) *int { return r.Sat },
		`{"GSR": -1e30}`:      func(r telemetry.RawFields) *int { return r.GSR },
	} {
		t.Run(payload, func(t *testing.T) {
			require.Nil(t, field(decode(t, payload)))
		})
	}

	raw := decode(t, `{"sat": 1e3, "GSR": -40, "stress": 9007199254740993}`)
	require.Equal(t, 1000, *raw.Sat)
	require.Equal(t, -40, *raw.GSR)
	require.Equal(t, 9007199254740993, *raw.Stress)
}

func TestInexactIntegerFieldsResolveToDefaults(t *testing.T) {
	store := telemetry.New()
	store.Append(decode(t, `{"heartRate": -1.5, "sat": 1e30}`))

	health := store.Health()
	require.Equal(t, telemetry.AbsentInt, health.Latest.HeartRate)
	hr, ok := health.Newest(telemetry.SeriesHeartRate)
	require.True(t, ok)
	require.True(t, hr.Absent())

	sat, ok := store.GPS().Newest(telemetry.SeriesSat)
	require.True(t, ok)
	require.Equal(t, 0.0, sat.Value)
}

func TestDecodePayloadFormat(t *testing.T) {
	invalid := []byte{'{', '"', 'L', 0xff, '"', ':', '1', '}'}

	_, err := ingest.JSON{}.Deserialize(&ingest.Data{
		Payload:       invalid,
		PayloadFormat: 1,
	})
	require.ErrorContains(t, err, "declared as UTF-8")

	_, err = ingest.JSON{}.Deserialize(&ingest.Data{Payload: invalid})
	require.ErrorContains(t, err, "not valid UTF-8")
	require.NotContains(t, err.Error(), "declared")

	raw, err := ingest.JSON{}.Deserialize(&ingest.Data{
		Payload:       []byte(`{"LPG": 2.5}`),
		PayloadFormat: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 2.5, *raw.LPG)
}

func TestDecodeSentinelsPassThrough(t *testing.T) {
	raw := decode(t, `{"heartRate": -1, "spo2": -1, "temperature": -1.0}`)
	require.Equal(t, -1, *raw.HeartRate)
	require.Equal(t, -1.0, *raw.SpO2)
	require.Equal(t, -1.0, *raw.Temperature)
}

func TestDecodeLastDuplicateWins(t *testing.T) {
	raw := decode(t, `{"LPG": 1.0, "LPG": 2.0}`)
	require.Equal(t, 2.0, *raw.LPG)
}

func TestDecodeContentType(t *testing.T) {
	raw, err := ingest.JSON{}.Deserialize(&ingest.Data{
		Payload:     []byte(`{"LPG": 4.0}`),
		ContentType: "application/json",
	})
	require.NoError(t, err)
	require.Equal(t, 4.0, *raw.LPG)

	_, err = ingest.JSON{}.Deserialize(&ingest.Data{
		Payload:     []byte(`{"LPG": 4.0}`),
		ContentType: "text/plain",
	})
	require.ErrorIs(t, err, ingest.ErrUnsupportedContentType)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	for name, payload := range map[string][]byte{
		"empty":     {},
		"garbage":   []byte("not json"),
		"truncated": []byte(`{"LPG": 1.0`),
		"array":     []byte(`[1, 2, 3]`),
		"number":    []byte(`42`),
		"string":    []byte(`"LPG"`),
		"null":      []byte(`null`),
		"not utf-8": {'{', '"', 'L', 0xff, '"', ':', '1', '}'},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ingest.JSON{}.Deserialize(&ingest.Data{Payload: payload})
			var perr *ingest.PayloadError
			require.ErrorAs(t, err, &perr)
		})
	}
}
