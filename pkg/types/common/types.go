// Package common holds cross-layer value types shared by every module of the
// MedReg-Intelligence engine.  Only plain data types and small helpers live
// here; no business logic.
package common

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// Timestamp is a time.Time alias with RFC 3339 JSON serialization.
type Timestamp time.Time

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DateRange defines a time interval.
type DateRange struct {
	From Timestamp `json:"from"`
	To   Timestamp `json:"to"`
}

// RiskLevel represents an impact or risk tier used across timeline events and
// approval verdicts.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the generic wrapper for all API responses.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp Timestamp    `json:"timestamp"`
}

// NewID generates a new UUID v4.
func NewID() ID {
	return ID(uuid.New().String())
}

// GenerateID generates a unique ID with an optional prefix.
func GenerateID(prefix string) string {
	if prefix == "" {
		return uuid.New().String()
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}

// Validate checks if the ID is a valid UUID v4.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid ID format: %w", err)
	}
	return nil
}

// NewTimestamp returns the current UTC time as a Timestamp.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

// ToTime converts the Timestamp back to a time.Time.
func (t Timestamp) ToTime() time.Time {
	return time.Time(t)
}

// MarshalJSON implements json.Marshaler, using ISO 8601 format.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// Validate checks if pagination parameters are within valid bounds.
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500")
	}
	return nil
}

// Offset returns the SQL OFFSET value.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Validate checks if the date range is valid.
func (dr DateRange) Validate() error {
	if time.Time(dr.From).After(time.Time(dr.To)) {
		return fmt.Errorf("invalid date range: 'from' must be before or equal to 'to'")
	}
	return nil
}

// NewSuccessResponse creates a successful APIResponse.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success:   true,
		Data:      data,
		Timestamp: NewTimestamp(),
	}
}

// NewErrorResponse creates an error APIResponse.
func NewErrorResponse(code string, message string) APIResponse[any] {
	return APIResponse[any]{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
		Timestamp: NewTimestamp(),
	}
}
