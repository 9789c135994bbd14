package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"snapexpense/internal/app"
	"snapexpense/internal/core"
	applog "snapexpense/internal/log"
)

// maxImageBytes caps receipt uploads. Phone photos compress well below this.
const maxImageBytes = 10 << 20

// handleUpdateDraft mirrors form edits into the server-held draft.
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.controller.UpdateDraft(
		strings.TrimSpace(r.Form.Get("amount")),
		sanitizeInput(r.Form.Get("merchant")),
		strings.TrimSpace(r.Form.Get("date")),
		sanitizeInput(r.Form.Get("description")),
	)
	w.WriteHeader(http.StatusNoContent)
}

// handleCaptureImage stores the uploaded receipt photo on the draft and
// kicks off analysis when a provider is configured.
func (s *Server) handleCaptureImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		s.logger.WarnContext(r.Context(), "Rejecting receipt upload", applog.FieldError, err)
		s.renderFormError(w, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}

	file, _, err := r.FormFile("receipt")
	if err != nil {
		s.renderFormError(w, http.StatusBadRequest, "No image in upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to read receipt upload", applog.FieldError, err)
		s.renderFormError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		s.renderFormError(w, http.StatusUnsupportedMediaType, "Upload must be an image")
		return
	}

	uri := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	s.controller.CaptureImage(uri)

	// The screen re-renders immediately with the preview; analysis results
	// arrive through the polling refresh.
	s.controller.Navigate(core.ViewAdd)
	s.renderScreen(w, r)
}

// handleSaveExpense validates the draft and commits it to the collection.
func (s *Server) handleSaveExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.controller.UpdateDraft(
		strings.TrimSpace(r.Form.Get("amount")),
		sanitizeInput(r.Form.Get("merchant")),
		strings.TrimSpace(r.Form.Get("date")),
		sanitizeInput(r.Form.Get("description")),
	)

	record, err := s.controller.SaveExpense(r.Context())
	if err != nil {
		s.logger.WarnContext(r.Context(), "Expense save rejected", applog.FieldError, err)
		s.renderFormError(w, http.StatusUnprocessableEntity, saveErrorMessage(err))
		return
	}

	s.logger.InfoContext(r.Context(), "Expense saved",
		applog.FieldRecordID, record.ID,
		applog.FieldMerchant, record.Merchant,
		applog.FieldAmountPence, record.Amount.Pence)

	s.invalidateSummary()
	w.Header().Set("HX-Trigger", "expense:created")
	s.renderScreen(w, r)
}

// handleDeleteExpense removes a record and re-renders the active screen.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		s.renderFormError(w, http.StatusBadRequest, "Missing record id")
		return
	}

	if err := s.controller.DeleteExpense(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Expense delete failed",
			applog.FieldRecordID, id, applog.FieldError, err)
		s.renderFormError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	s.logger.InfoContext(r.Context(), "Expense deleted", applog.FieldRecordID, id)
	s.invalidateSummary()
	w.Header().Set("HX-Trigger", "expense:deleted")
	s.renderScreen(w, r)
}

// handleCancelDraft discards the draft and returns to the dashboard.
func (s *Server) handleCancelDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.controller.ResetForm()
	s.controller.Navigate(core.ViewDashboard)
	s.renderScreen(w, r)
}

func saveErrorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrAnalysisInFlight):
		return "Wait for the receipt analysis to finish"
	case errors.Is(err, app.ErrMissingFields):
		return "Amount and merchant are required"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a non-negative number"
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must look like 2026-08-31"
	default:
		return "Failed to save expense"
	}
}

func (s *Server) renderFormError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="error" role="alert">%s</div>`, msg)
}
