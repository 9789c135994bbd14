package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validRecord() Record {
	return Record{
		ID:        "rec-1",
		Amount:    Money{Pence: 999},
		Merchant:  "Costa",
		Date:      "2024-01-05",
		Timestamp: 1704412800000,
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr error
	}{
		{name: "valid record", mutate: func(r *Record) {}},
		{name: "zero amount is valid", mutate: func(r *Record) { r.Amount = Money{} }},
		{name: "empty id", mutate: func(r *Record) { r.ID = "" }, wantErr: ErrEmptyID},
		{name: "blank merchant", mutate: func(r *Record) { r.Merchant = "   " }, wantErr: ErrEmptyMerchant},
		{name: "negative amount", mutate: func(r *Record) { r.Amount = Money{Pence: -1} }, wantErr: ErrInvalidAmount},
		{name: "malformed date", mutate: func(r *Record) { r.Date = "05/01/2024" }, wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordJSONLayout(t *testing.T) {
	r := validRecord()
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	s := string(b)

	if !strings.Contains(s, `"amount":9.99`) {
		t.Errorf("amount should serialize as a pound number, got %s", s)
	}
	if strings.Contains(s, `"description"`) || strings.Contains(s, `"imageUrl"`) {
		t.Errorf("empty optional fields should be omitted, got %s", s)
	}

	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back != r {
		t.Errorf("round-trip mismatch: got %+v, want %+v", back, r)
	}
}

func TestRecordJSONOptionalFields(t *testing.T) {
	r := validRecord()
	r.Description = "Team lunch"
	r.ImageURL = "data:image/jpeg;base64,AAAA"

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back.Description != r.Description || back.ImageURL != r.ImageURL {
		t.Errorf("optional fields lost in round-trip: got %+v", back)
	}
}

func TestViewIsValid(t *testing.T) {
	for _, v := range []View{ViewDashboard, ViewAdd, ViewHistory} {
		if !v.IsValid() {
			t.Errorf("View(%q).IsValid() = false, want true", v)
		}
	}
	if View("SETTINGS").IsValid() {
		t.Error(`View("SETTINGS").IsValid() = true, want false`)
	}
}
