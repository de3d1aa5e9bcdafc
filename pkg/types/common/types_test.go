package common

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewID_IsValidUUID(t *testing.T) {
	id := NewID()
	if err := id.Validate(); err != nil {
		t.Errorf("NewID produced invalid ID: %v", err)
	}
}

func TestIDValidate_RejectsEmptyAndGarbage(t *testing.T) {
	if err := ID("").Validate(); err == nil {
		t.Error("expected error for empty ID")
	}
	if err := ID("not-a-uuid").Validate(); err == nil {
		t.Error("expected error for malformed ID")
	}
}

func TestGenerateID_Prefix(t *testing.T) {
	id := GenerateID("verdict")
	if len(id) <= len("verdict-") {
		t.Errorf("expected prefixed ID, got %q", id)
	}
	if id[:8] != "verdict-" {
		t.Errorf("expected verdict- prefix, got %q", id)
	}
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	orig := Timestamp(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed Timestamp
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.ToTime().Equal(orig.ToTime()) {
		t.Errorf("round trip mismatch: %v != %v", parsed.ToTime(), orig.ToTime())
	}
}

func TestPagination_Validate(t *testing.T) {
	cases := []struct {
		name    string
		p       Pagination
		wantErr bool
	}{
		{"valid", Pagination{Page: 1, PageSize: 20}, false},
		{"zero page", Pagination{Page: 0, PageSize: 20}, true},
		{"zero page size", Pagination{Page: 1, PageSize: 0}, true},
		{"oversized page size", Pagination{Page: 1, PageSize: 501}, true},
		{"max page size", Pagination{Page: 1, PageSize: 500}, false},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestPagination_Offset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 25}
	if got := p.Offset(); got != 50 {
		t.Errorf("expected offset 50, got %d", got)
	}
}

func TestDateRange_Validate(t *testing.T) {
	now := time.Now().UTC()
	valid := DateRange{From: Timestamp(now.Add(-time.Hour)), To: Timestamp(now)}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	inverted := DateRange{From: Timestamp(now), To: Timestamp(now.Add(-time.Hour))}
	if err := inverted.Validate(); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("REC_001", "record not found")
	if resp.Success {
		t.Error("error response must not be successful")
	}
	if resp.Error == nil || resp.Error.Code != "REC_001" {
		t.Errorf("unexpected error detail: %+v", resp.Error)
	}
}
