package host

import (
	"context"
	"net/http"
	"net/url"
)

// PageRequest is what an options page renderer sees of the HTTP request.
type PageRequest struct {
	Ctx      context.Context
	Method   string
	Form     url.Values
	Nonces   NonceBinder
	Settings *SettingsRegistry

	// OptionsURL is the generic options-save endpoint forms post to.
	OptionsURL string
	// Referer is the page URL, echoed back so a save can redirect to it.
	Referer string
}

// IsPost reports whether the request is a form submission.
func (r *PageRequest) IsPost() bool {
	return r.Method == http.MethodPost
}

// DieError aborts the current request with a terminal error page.
type DieError struct {
	Status  int
	Title   string
	Message string
}

func (e *DieError) Error() string {
	return e.Message
}

// Die returns a DieError with status and message.
func Die(status int, message string) *DieError {
	return &DieError{Status: status, Title: "Error", Message: message}
}
