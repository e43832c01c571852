// Package forms relays site form submissions (newsletter signups, club
// reservations, pitch access requests) to the external spreadsheet
// endpoint. The relay is one-way: the user's confirmation never depends
// on it, so every failure here is logged and swallowed.
package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Submission is the flat payload forwarded downstream: a formType
// discriminator plus free-form fields, all at top level.
type Submission struct {
	FormType string
	Fields   map[string]string
}

func (s Submission) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(s.Fields)+1)
	for k, v := range s.Fields {
		flat[k] = v
	}
	flat["formType"] = s.FormType
	return json.Marshal(flat)
}

// Journal records submissions locally, best-effort, before they leave the
// process.
type Journal interface {
	Record(ctx context.Context, sub Submission) error
}

type Relay struct {
	endpoint   string
	httpClient *http.Client
	journal    Journal
}

// NewRelay builds a relay to the given endpoint. journal may be nil.
func NewRelay(endpoint string, journal Journal) *Relay {
	return &Relay{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		journal: journal,
	}
}

// Notify journals and forwards the submission. It returns nothing: the
// downstream spreadsheet is not authoritative for anything, so delivery is
// at-most-once with no confirmation. Callers show success regardless.
func (r *Relay) Notify(ctx context.Context, sub Submission) {
	if r.journal != nil {
		if err := r.journal.Record(ctx, sub); err != nil {
			log.Printf("form journal write failed (type=%s): %v", sub.FormType, err)
		}
	}

	if err := r.forward(ctx, sub); err != nil {
		log.Printf("form relay failed (type=%s): %v", sub.FormType, err)
	}
}

func (r *Relay) forward(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	// Response body is ignored by contract; drain it so the connection
	// can be reused.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
