package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RecordID
		wantErr bool
	}{
		{name: "number", input: `{"id": 7}`, want: 7},
		{name: "numeric string", input: `{"id": "12"}`, want: 12},
		{name: "null", input: `{"id": null}`, want: 0},
		{name: "absent", input: `{}`, want: 0},
		{name: "word", input: `{"id": "abc"}`, wantErr: true},
		{name: "negative", input: `{"id": -3}`, wantErr: true},
		{name: "fraction", input: `{"id": 1.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateInterestRequest
			err := json.Unmarshal([]byte(tt.input), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.ID)
		})
	}
}

func TestRecord_MarshalNullValue(t *testing.T) {
	out, err := json.Marshal(Record{ID: 1, Name: "Ann", Division: "Eng", Location: "NYC"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Ann","division":"Eng","location":"NYC","value":null}`, string(out))
}

func TestCreateRecordRequest_Validate(t *testing.T) {
	assert.NoError(t, CreateRecordRequest{Name: "Ann", Division: "Eng", Location: "NYC"}.Validate())

	err := CreateRecordRequest{Name: "Ann", Location: " "}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "division, location")
}

func TestValidateInterest(t *testing.T) {
	assert.NoError(t, ValidateInterest("hiking"))
	assert.NoError(t, ValidateInterest(" rock climbing "))

	for _, v := range []string{"", " ", "\t\n"} {
		assert.ErrorIs(t, ValidateInterest(v), ErrValidation, "%q", v)
	}
}
