package ui

import (
	"sync"
	"time"
)

// DefaultAlertTimeout is how long an alert stays visible.
const DefaultAlertTimeout = 5 * time.Second

// SpinnerID identifies the loading indicator node.
const SpinnerID = "loading-spinner"

// Severity selects how an alert is styled.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// HelpersOption configures Helpers.
type HelpersOption func(*Helpers)

// WithAlertTimeout sets how long alerts stay visible.
func WithAlertTimeout(d time.Duration) HelpersOption {
	return func(h *Helpers) {
		h.alertTimeout = d
	}
}

// WithAfterFunc replaces time.AfterFunc for scheduling alert removal.
func WithAfterFunc(fn func(time.Duration, func())) HelpersOption {
	return func(h *Helpers) {
		h.afterFunc = fn
	}
}

// Helpers shows alerts and the spinner on a Document.
type Helpers struct {
	doc          *Document
	alertTimeout time.Duration
	afterFunc    func(time.Duration, func())

	// serializes replace-then-insert so only one alert is ever visible
	alertMu sync.Mutex
	// serializes check-then-insert for the spinner
	spinnerMu sync.Mutex
}

// NewHelpers creates Helpers drawing on doc.
func NewHelpers(doc *Document, opts ...HelpersOption) *Helpers {
	h := &Helpers{
		doc:          doc,
		alertTimeout: DefaultAlertTimeout,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Document returns the Document the helpers draw on.
func (h *Helpers) Document() *Document {
	return h.doc
}

// ShowAlert replaces any visible alert with message, styled by severity
// (error if empty), and removes it again after the alert timeout.
func (h *Helpers) ShowAlert(message string, severity Severity) *Node {
	if severity == "" {
		severity = SeverityError
	}
	alert := &Node{
		Class: "alert alert-" + string(severity),
		Text:  message,
	}

	h.alertMu.Lock()
	if existing := h.doc.QueryClass("alert"); existing != nil {
		h.doc.Remove(existing)
	}
	h.doc.Prepend(alert)
	h.alertMu.Unlock()

	// Removing an alert that was already replaced is a no-op.
	h.afterFunc(h.alertTimeout, func() {
		h.doc.Remove(alert)
	})
	return alert
}

// ShowSpinner adds the loading indicator unless it is already shown.
func (h *Helpers) ShowSpinner() {
	h.spinnerMu.Lock()
	defer h.spinnerMu.Unlock()

	if h.doc.GetByID(SpinnerID) != nil {
		return
	}
	h.doc.Append(&Node{ID: SpinnerID, Class: "spinner"})
}

// HideSpinner removes the loading indicator if it is shown.
func (h *Helpers) HideSpinner() {
	h.spinnerMu.Lock()
	defer h.spinnerMu.Unlock()

	if spinner := h.doc.GetByID(SpinnerID); spinner != nil {
		h.doc.Remove(spinner)
	}
}
