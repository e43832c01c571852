package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/batcstore/batc-storefront/internal/forms"
)

// Notifier is the one-way relay capability: inputs in, nothing out.
type Notifier interface {
	Notify(ctx context.Context, sub forms.Submission)
}

type FormsHandler struct {
	relay   Notifier
	timeout time.Duration
}

func NewFormsHandler(relay Notifier, timeout time.Duration) *FormsHandler {
	return &FormsHandler{
		relay:   relay,
		timeout: timeout,
	}
}

type FormResponseDTO struct {
	Status string `json:"status"`
}

// SubmitForm accepts a flat object with a formType discriminator and
// free-form string fields. The relay downstream is not authoritative for
// anything, so the user always gets a confirmation once the payload
// parses; delivery failures are logged inside the relay.
func (h *FormsHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var flat map[string]string
	if err := json.NewDecoder(r.Body).Decode(&flat); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	formType := flat["formType"]
	if formType == "" {
		respondError(w, http.StatusBadRequest, "missing_form_type", "formType is required")
		return
	}
	delete(flat, "formType")

	h.relay.Notify(ctx, forms.Submission{
		FormType: formType,
		Fields:   flat,
	})

	respondJSON(w, http.StatusAccepted, FormResponseDTO{Status: "received"})
}
