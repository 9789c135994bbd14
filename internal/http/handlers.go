package http

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"snapexpense/internal/app"
	"snapexpense/internal/core"
	applog "snapexpense/internal/log"
)

// View models: screens render pre-formatted strings, not domain types.
type (
	recordView struct {
		ID          string
		Merchant    string
		Date        string
		Amount      string
		Description string
		// ImageURL is a data URI; template.URL keeps the sanitizer from
		// rewriting it.
		ImageURL template.URL
		SavedAt  string // wall-clock time of creation
	}

	barView struct {
		Label  string
		Amount string
		Height int
		Latest bool
	}

	dashboardView struct {
		Total      string
		Count      int
		HasRecords bool
		Bars       []barView
		Recent     []recordView
	}

	addView struct {
		Draft           app.Draft
		Image           template.URL
		Analyzing       bool
		AnalysisEnabled bool
		CanSave         bool
	}

	historyView struct {
		Records    []recordView
		HasRecords bool
	}

	shellView struct {
		View   core.View
		Screen screenView
	}

	// screenView carries whichever screen is active; templates pick the
	// non-nil one.
	screenView struct {
		Dashboard *dashboardView
		Add       *addView
		History   *historyView
	}
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := shellView{
		View:   s.controller.View(),
		Screen: s.screenData(),
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleScreen renders the active screen partial.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	s.renderScreen(w, r)
}

// handleAnalysisStatus serves the polling refresh while a receipt is being
// analyzed. In flight it re-renders only the status region, leaving the
// fields editable under the user's cursor; once the call settles it
// retargets a single full-screen swap so the merged values appear in the
// form and the poll stops.
func (s *Server) handleAnalysisStatus(w http.ResponseWriter, r *http.Request) {
	data := s.addData()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	name := "analysis-region"
	if !data.Analyzing {
		name = "add.html"
		w.Header().Set("HX-Retarget", "#add-screen")
		w.Header().Set("HX-Reswap", "outerHTML")
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Analysis partial execution failed",
			applog.FieldError, err, "template", name)
		_, _ = w.Write([]byte(`<div class="error">Failed to render screen</div>`))
	}
}

// handleNavigate jumps to the requested screen and renders it.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	view := core.View(strings.TrimSpace(r.Form.Get("view")))
	if !view.IsValid() {
		s.logger.WarnContext(r.Context(), "Ignoring navigation to unknown view", applog.FieldView, string(view))
	}
	s.controller.Navigate(view)
	s.renderScreen(w, r)
}

func (s *Server) renderScreen(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var name string
	switch s.controller.View() {
	case core.ViewAdd:
		name = "add.html"
	case core.ViewHistory:
		name = "history.html"
	default:
		name = "dashboard.html"
	}
	if err := s.templates.ExecuteTemplate(w, name, s.screenData()); err != nil {
		s.logger.ErrorContext(r.Context(), "Screen template execution failed",
			applog.FieldError, err, "template", name)
		_, _ = w.Write([]byte(`<div class="error">Failed to render screen</div>`))
	}
}

// screenData builds the view model for the active screen.
func (s *Server) screenData() screenView {
	switch s.controller.View() {
	case core.ViewAdd:
		return screenView{Add: s.addData()}
	case core.ViewHistory:
		return screenView{History: s.historyData()}
	default:
		return screenView{Dashboard: s.dashboardData()}
	}
}

func (s *Server) dashboardData() *dashboardView {
	sum := s.summary()
	v := &dashboardView{
		Total:      sum.Total.Format(),
		Count:      sum.Count,
		HasRecords: sum.Count > 0,
	}
	for _, bar := range sum.Series {
		v.Bars = append(v.Bars, barView{
			Label:  bar.Label,
			Amount: bar.Amount.Format(),
			Height: bar.Height,
			Latest: bar.Latest,
		})
	}
	for _, r := range sum.Recent {
		v.Recent = append(v.Recent, newRecordView(r))
	}
	return v
}

func (s *Server) addData() *addView {
	d := s.controller.Draft()
	analyzing := s.controller.IsAnalyzing()
	return &addView{
		Draft:           d,
		Image:           template.URL(d.Image),
		Analyzing:       analyzing,
		AnalysisEnabled: s.controller.AnalysisEnabled(),
		CanSave:         !analyzing && d.Amount != "" && d.Merchant != "",
	}
}

func (s *Server) historyData() *historyView {
	records := s.controller.Records()
	v := &historyView{HasRecords: len(records) > 0}
	for _, r := range records {
		v.Records = append(v.Records, newRecordView(r))
	}
	return v
}

func newRecordView(r core.Record) recordView {
	return recordView{
		ID:          r.ID,
		Merchant:    r.Merchant,
		Date:        r.Date,
		Amount:      r.Amount.Format(),
		Description: r.Description,
		ImageURL:    template.URL(r.ImageURL),
		SavedAt:     time.UnixMilli(r.Timestamp).Format("15:04"),
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
