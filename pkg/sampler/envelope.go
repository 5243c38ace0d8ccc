package sampler

import "encoding/json"

// Kind tags the outcome of a sampling call.
type Kind string

const (
	// KindNone marks a successful call, including an exhausted window.
	KindNone Kind = ""

	// KindValidation marks a request rejected before any upstream call.
	KindValidation Kind = "validation"

	// KindRateLimited marks an upstream 403.
	KindRateLimited Kind = "rate_limited"

	// KindUnauthorized marks an upstream 401.
	KindUnauthorized Kind = "unauthorized"

	// KindTransport marks a network failure or timeout.
	KindTransport Kind = "transport"

	// KindUpstream marks any other non-2xx status or an unreadable body.
	KindUpstream Kind = "upstream"
)

// Envelope is the normalized result of one sampling call.
type Envelope struct {
	Success    bool              `json:"success"`
	Items      []json.RawMessage `json:"items"`
	TotalCount int               `json:"total_count"`
	Seed       *int64            `json:"seed"`
	Page       int               `json:"page"`
	HasMore    bool              `json:"has_more"`

	// UnderlyingPage is the provider page that was requested, 0 if none was.
	UnderlyingPage int `json:"underlying_page,omitempty"`

	Kind    Kind   `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Exhausted reports whether the envelope signals the end of the reachable window.
func (e Envelope) Exhausted() bool {
	return e.Success && e.UnderlyingPage == 0 && len(e.Items) == 0 && !e.HasMore
}

func failure(req Request, kind Kind, msg string) Envelope {
	return Envelope{
		Success: false,
		Items:   []json.RawMessage{},
		Seed:    req.Seed,
		Page:    req.Page,
		Kind:    kind,
		Error:   msg,
	}
}
