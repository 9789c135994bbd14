package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// View identifies one of the three navigable screens.
type View string

const (
	ViewDashboard View = "DASHBOARD"
	ViewAdd       View = "ADD"
	ViewHistory   View = "HISTORY"
)

// IsValid returns true if the view is one of the three screens.
func (v View) IsValid() bool {
	switch v {
	case ViewDashboard, ViewAdd, ViewHistory:
		return true
	default:
		return false
	}
}

type (
	Money struct {
		Pence int64
	}

	// Record is one persisted receipt entry. Records are immutable after
	// creation; the only lifecycle operations are add and delete-by-id.
	Record struct {
		ID          string
		Amount      Money
		Merchant    string
		Date        string // YYYY-MM-DD, user-editable transaction date
		Timestamp   int64  // epoch milliseconds at save time
		Description string
		ImageURL    string // optional data URI captured with the record
	}

	// ReceiptAnalysis is the best-effort partial result of the external
	// image-understanding call. Nil fields mean the service could not
	// determine them.
	ReceiptAnalysis struct {
		Amount   *float64 `json:"amount"`
		Merchant *string  `json:"merchant"`
		Date     *string  `json:"date"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyMerchant = errors.New("empty merchant")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyID       = errors.New("empty record id")
)

// recordJSON is the persisted wire layout: a JSON object with amount as a
// decimal number of pounds and optional description/imageUrl keys.
type recordJSON struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Merchant    string  `json:"merchant"`
	Date        string  `json:"date"`
	Timestamp   int64   `json:"timestamp"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:          r.ID,
		Amount:      r.Amount.Pounds(),
		Merchant:    r.Merchant,
		Date:        r.Date,
		Timestamp:   r.Timestamp,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	})
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var w recordJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Record{
		ID:          w.ID,
		Amount:      MoneyFromPounds(w.Amount),
		Merchant:    w.Merchant,
		Date:        w.Date,
		Timestamp:   w.Timestamp,
		Description: w.Description,
		ImageURL:    w.ImageURL,
	}
	return nil
}

// Validate enforces the record invariants: non-empty id and merchant, a
// non-negative amount and a parseable transaction date. The controller
// calls this before the store is asked to add a record.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if r.Amount.Pence < 0 {
		return ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Today returns the current date in the record date format.
func Today() string {
	return time.Now().Format("2006-01-02")
}
