// Package app holds the view controller: the current screen selector, the
// add-form draft, and the mediation between the record store and the
// receipt analyzer.
package app

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"snapexpense/internal/core"
	applog "snapexpense/internal/log"
	"snapexpense/internal/store"
)

var (
	// ErrMissingFields rejects a save while amount or merchant is empty.
	ErrMissingFields = errors.New("amount and merchant are required")
	// ErrAnalysisInFlight rejects a save while the analyzer call is pending.
	ErrAnalysisInFlight = errors.New("analysis in flight")
)

// Analyzer is the receipt-analysis collaborator. A nil Analyzer disables
// the auto-fill path entirely.
type Analyzer interface {
	Analyze(ctx context.Context, image string) (core.ReceiptAnalysis, error)
}

// Draft is the in-progress field set for a new record during the Add flow.
// All fields are the raw strings the form holds.
type Draft struct {
	Amount      string
	Merchant    string
	Date        string
	Description string
	Image       string // data URI preview, set on capture
}

// Controller mediates between the store, the analyzer and the three
// screens. It is safe for concurrent use by HTTP handlers.
type Controller struct {
	mu       sync.Mutex
	store    *store.Store
	analyzer Analyzer
	logger   *applog.Logger
	timeout  time.Duration

	view      core.View
	draft     Draft
	analyzing bool

	// generation stamps the draft; an analysis result is merged only when
	// the stamp it was started under still matches, so late results for an
	// abandoned draft are discarded.
	generation uint64
}

func NewController(s *store.Store, a Analyzer, timeout time.Duration, logger *applog.Logger) *Controller {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Controller{
		store:    s,
		analyzer: a,
		logger:   logger.WithComponent(applog.ComponentController),
		timeout:  timeout,
		view:     core.ViewDashboard,
		draft:    emptyDraft(),
	}
}

func emptyDraft() Draft {
	return Draft{Date: core.Today()}
}

// View returns the currently selected screen.
func (c *Controller) View() core.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Navigate jumps to the given screen unconditionally. There is no history
// stack. Unknown views are ignored.
func (c *Controller) Navigate(v core.View) {
	if !v.IsValid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// IsAnalyzing reports whether an analyzer call is pending.
func (c *Controller) IsAnalyzing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analyzing
}

// AnalysisEnabled reports whether the auto-fill path is configured.
func (c *Controller) AnalysisEnabled() bool {
	return c.analyzer != nil
}

// UpdateDraft replaces the typed form fields. The image preview is owned
// by CaptureImage and is left untouched.
func (c *Controller) UpdateDraft(amount, merchant, date, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Amount = amount
	c.draft.Merchant = merchant
	c.draft.Date = date
	c.draft.Description = description
}

// ResetForm clears the draft to defaults: empty fields, today's date, no
// image. Called on cancel and after a successful save. Any in-flight
// analysis result is orphaned by the generation bump.
func (c *Controller) ResetForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetFormLocked()
}

func (c *Controller) resetFormLocked() {
	c.draft = emptyDraft()
	c.generation++
	// The draft anyone was analyzing for is gone; stop gating the save.
	c.analyzing = false
}

// Records returns the current collection, newest first.
func (c *Controller) Records() []core.Record {
	return c.store.Records()
}

// SaveExpense constructs a record from the draft and hands it to the
// store. It is rejected while amount or merchant is empty or an analysis
// is in flight. On success the draft resets and the view jumps to the
// dashboard.
func (c *Controller) SaveExpense(ctx context.Context) (core.Record, error) {
	c.mu.Lock()
	if c.analyzing {
		c.mu.Unlock()
		return core.Record{}, ErrAnalysisInFlight
	}
	d := c.draft
	c.mu.Unlock()

	if d.Amount == "" || d.Merchant == "" {
		return core.Record{}, ErrMissingFields
	}
	pence, err := core.ParseDecimalToPence(d.Amount)
	if err != nil {
		return core.Record{}, err
	}

	r := core.Record{
		ID:          uuid.New().String(),
		Amount:      core.Money{Pence: pence},
		Merchant:    d.Merchant,
		Date:        d.Date,
		Timestamp:   time.Now().UnixMilli(),
		Description: d.Description,
		ImageURL:    d.Image,
	}
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	if err := c.store.SaveRecord(ctx, r); err != nil {
		return core.Record{}, err
	}

	c.mu.Lock()
	c.resetFormLocked()
	c.view = core.ViewDashboard
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Expense saved", applog.FieldRecordID, r.ID, applog.FieldMerchant, r.Merchant)
	return r, nil
}

// DeleteExpense delegates straight to the store; there is no confirmation
// step.
func (c *Controller) DeleteExpense(ctx context.Context, id string) error {
	return c.store.RemoveRecord(ctx, id)
}

// CaptureImage accepts one image and stores it as the draft preview
// immediately, independent of the analysis outcome. When an analyzer is
// configured it starts the call in the background and returns a channel
// that closes once the call settles; without one it returns nil and the
// flow proceeds as plain manual entry.
func (c *Controller) CaptureImage(image string) <-chan struct{} {
	c.mu.Lock()
	c.draft.Image = image
	if c.analyzer == nil {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.analyzing = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// The capture request has long since returned; the call runs on
		// its own bounded context.
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		result, err := c.analyzer.Analyze(ctx, image)
		c.finishAnalysis(gen, result, err)
	}()
	return done
}

// finishAnalysis merges a completed analysis into the draft, unless the
// draft has moved on since the call started.
func (c *Controller) finishAnalysis(gen uint64, result core.ReceiptAnalysis, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		c.logger.Debug("Discarding stale analysis result")
		return
	}
	c.analyzing = false
	if err != nil {
		// Non-fatal: the form stays fully usable for manual entry.
		c.logger.Warn("Receipt analysis failed, falling back to manual entry", applog.FieldError, err)
		return
	}
	c.draft = MergeAnalysis(c.draft, result)
}

// MergeAnalysis fills draft fields from a partial analysis result. A field
// is overwritten only when the corresponding result field is present;
// absent fields never clear what the user may have typed.
func MergeAnalysis(d Draft, a core.ReceiptAnalysis) Draft {
	if a.Amount != nil {
		d.Amount = strconv.FormatFloat(*a.Amount, 'f', -1, 64)
	}
	if a.Merchant != nil {
		d.Merchant = *a.Merchant
	}
	if a.Date != nil {
		d.Date = *a.Date
	}
	return d
}
