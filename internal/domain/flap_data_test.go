package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestValidate_AllFieldsPresent(t *testing.T) {
	in := &FlapDataInput{
		PatientID:   "p1",
		ImageURL:    "http://x/1.jpg",
		Temperature: floatPtr(36.5),
	}
	assert.NoError(t, in.Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name  string
		input FlapDataInput
		field string
	}{
		{"missing patient_id", FlapDataInput{ImageURL: "http://x/1.jpg", Temperature: floatPtr(36.5)}, "patient_id"},
		{"missing image_url", FlapDataInput{PatientID: "p1", Temperature: floatPtr(36.5)}, "image_url"},
		{"missing temperature", FlapDataInput{PatientID: "p1", ImageURL: "http://x/1.jpg"}, "temperature"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			require.Error(t, err)

			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tc.field, missing.Field)
		})
	}
}

func TestValidate_ZeroTemperatureIsPresent(t *testing.T) {
	// 0 度是合法读数，不等于缺失
	in := &FlapDataInput{
		PatientID:   "p1",
		ImageURL:    "http://x/1.jpg",
		Temperature: floatPtr(0),
	}
	assert.NoError(t, in.Validate())
}

func TestToFlapData_DefaultsTimestampToReceivedAt(t *testing.T) {
	receivedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	in := &FlapDataInput{
		PatientID:   "p1",
		ImageURL:    "http://x/1.jpg",
		Temperature: floatPtr(36.5),
	}

	data := in.ToFlapData(receivedAt)
	assert.Equal(t, receivedAt, data.Timestamp)
	assert.Equal(t, "p1", data.PatientID)
	assert.Equal(t, 36.5, data.Temperature)
}

func TestToFlapData_KeepsUpstreamTimestamp(t *testing.T) {
	upstream := time.Date(2026, 7, 31, 8, 30, 0, 0, time.UTC)
	receivedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	in := &FlapDataInput{
		PatientID:   "p1",
		ImageURL:    "http://x/1.jpg",
		Temperature: floatPtr(36.5),
		Timestamp:   &upstream,
	}

	data := in.ToFlapData(receivedAt)
	assert.Equal(t, upstream, data.Timestamp)
}

func TestFlapDataInput_UnmarshalDeviceWirePayload(t *testing.T) {
	// 设备上报的三字段载荷
	raw := []byte(`{"patient_id":"p1","image_url":"http://x/1.jpg","temperature":36.5}`)

	var in FlapDataInput
	require.NoError(t, json.Unmarshal(raw, &in))
	require.NoError(t, in.Validate())
	assert.Equal(t, 36.5, *in.Temperature)
	assert.Nil(t, in.Timestamp)
}
