package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound   = errors.New("requested item not found")
	ErrValidation = errors.New("validation failed")
)

// RecordID is the server-assigned identifier of a Record. It decodes from a
// JSON number or a numeric JSON string and always encodes as a number.
type RecordID int64

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	parsed, err := ParseRecordID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id RecordID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseRecordID parses a positive decimal identifier.
func ParseRecordID(s string) (RecordID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid record id %q: %w", s, ErrValidation)
	}
	return RecordID(n), nil
}

// Record is one row of random_names_with_id. Value is nil until an interest
// has been chosen.
type Record struct {
	ID       RecordID `json:"id" example:"42"`
	Name     string   `json:"name" example:"Ann"`
	Division string   `json:"division" example:"Eng"`
	Location string   `json:"location" example:"NYC"`
	Value    *string  `json:"value" example:"hiking"`
}

// CreateRecordRequest is the body of POST /update-user-value.
type CreateRecordRequest struct {
	Name     string  `json:"name" example:"Ann"`
	Division string  `json:"division" example:"Eng"`
	Location string  `json:"location" example:"NYC"`
	Value    *string `json:"value,omitempty" example:""`
}

// Validate reports the first missing required field.
func (r CreateRecordRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Division) == "" {
		missing = append(missing, "division")
	}
	if strings.TrimSpace(r.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required: %w", strings.Join(missing, ", "), ErrValidation)
	}
	return nil
}

// CreateRecordResponse is returned with 201 after a successful create.
type CreateRecordResponse struct {
	ID RecordID `json:"id" example:"42"`
}

// UpdateInterestRequest is the body of POST /update-interest.
type UpdateInterestRequest struct {
	ID    RecordID `json:"id" example:"42"`
	Value string   `json:"value" example:"hiking"`
}

// UpdateValueRequest is the body of PATCH /users/{id}.
type UpdateValueRequest struct {
	Value string `json:"value" example:"hiking"`
}

// ValidateInterest reports whether value can be stored as an interest.
// Blank and whitespace-only values are rejected.
func ValidateInterest(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value required: %w", ErrValidation)
	}
	return nil
}
