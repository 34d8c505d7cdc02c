// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"math"
	"unicode/utf8"

	"github.com/ranjhana07/MINE/telemetry"
	"github.com/tidwall/gjson"
)

type (
	// Data represents an encoded message payload along with the metadata
	// that travelled with it. PayloadFormat is the MQTT payload format
	// indicator; 1 means the sender declared the payload UTF-8.
	Data struct {
		Payload       []byte
		ContentType   string
		PayloadFormat byte
	}

	// Decoder translates an inbound payload into raw telemetry fields.
	Decoder interface {
		Deserialize(*Data) (telemetry.RawFields, error)
	}

	// JSON decodes the combined sensor payload. It is lenient in the way the
	// devices need: unknown keys are ignored, missing keys resolve to their
	// defaults, booleans count as 0 or 1, integer fields accept only whole
	// numbers that fit an int, a key of any other type or value is treated as
	// missing, and the last duplicate key wins.
	JSON struct{}

	fieldSetter func(*telemetry.RawFields, gjson.Result)
)

var fieldSetters = map[string]fieldSetter{
	"LPG":     floatField(func(r *telemetry.RawFields, v *float64) { r.LPG = v }),
	"CH4":     floatField(func(r *telemetry.RawFields, v *float64) { r.CH4 = v }),
	"Propane": floatField(func(r *telemetry.RawFields, v *float64) { r.Propane = v }),
	"Butane":  floatField(func(r *telemetry.RawFields, v *float64) { r.Butane = v }),
	"H2":      floatField(func(r *telemetry.RawFields, v *float64) { r.H2 = v }),

	"heartRate": intField(func(r *telemetry.RawFields, v *int) { r.HeartRate = v }),
	"spo2":      floatField(func(r *telemetry.RawFields, v *float64) { r.SpO2 = v }),
	"GSR":       intField(func(r *telemetry.RawFields, v *int) { r.GSR = v }),
	"stress":    intField(func(r *telemetry.RawFields, v *int) { r.Stress = v }),

	"temperature": floatField(func(r *telemetry.RawFields, v *float64) { r.Temperature = v }),
	"humidity":    floatField(func(r *telemetry.RawFields, v *float64) { r.Humidity = v }),

	"lat": floatField(func(r *telemetry.RawFields, v *float64) { r.Lat = v }),
	"lon": floatField(func(r *telemetry.RawFields, v *float64) { r.Lon = v }),
	"alt": floatField(func(r *telemetry.RawFields, v *float64) { r.Alt = v }),
	"sat": intField(func(r *telemetry.RawFields, v *int) { r.Sat = v }),
}

// Deserialize decodes a UTF-8 JSON object into raw fields.
func (JSON) Deserialize(data *Data) (telemetry.RawFields, error) {
	var raw telemetry.RawFields

	switch data.ContentType {
	case "", "application/json":
	default:
		return raw, &PayloadError{
			message: "cannot decode " + data.ContentType,
			wrapped: ErrUnsupportedContentType,
		}
	}

	if !utf8.Valid(data.Payload) {
		if data.PayloadFormat == payloadFormatUTF8 {
			return raw, &PayloadError{
				message: "payload declared as UTF-8 is not valid UTF-8",
			}
		}
		return raw, &PayloadError{message: "payload is not valid UTF-8"}
	}
	if !gjson.ValidBytes(data.Payload) {
		return raw, &PayloadError{message: "payload is not valid JSON"}
	}

	doc := gjson.ParseBytes(data.Payload)
	if !doc.IsObject() {
		return raw, &PayloadError{message: "payload is not a JSON object"}
	}

	doc.ForEach(func(key, value gjson.Result) bool {
		if set, ok := fieldSetters[key.String()]; ok {
			set(&raw, value)
		}
		return true
	})
	return raw, nil
}

func floatField(
	set func(*telemetry.RawFields, *float64),
) fieldSetter {
	return func(r *telemetry.RawFields, v gjson.Result) {
		switch v.Type {
		case gjson.Number:
			n := v.Num
			set(r, &n)
		case gjson.True, gjson.False:
			n := v.Float()
			set(r, &n)
		default:
			set(r, nil)
		}
	}
}

func intField(
	set func(*telemetry.RawFields, *int),
) fieldSetter {
	return func(r *telemetry.RawFields, v gjson.Result) {
		switch v.Type {
		case gjson.Number:
			// Truncating could turn e.g. -1.5 into the -1 sentinel.
			if v.Num != math.Trunc(v.Num) ||
				v.Num < math.MinInt || v.Num >= -math.MinInt {
				set(r, nil)
				return
			}
			n := int(v.Int())
			set(r, &n)
		case gjson.True, gjson.False:
			n := int(v.Int())
			set(r, &n)
		default:
			set(r, nil)
		}
	}
}
