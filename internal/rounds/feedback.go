package rounds

import (
	"time"

	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// Auto-dismiss delays
const (
	BatchSuccessTTL  = 4 * time.Second
	DeleteSuccessTTL = 5 * time.Second
	PrizeSuccessTTL  = 6 * time.Second
)

// FeedbackKind names a feedback variant
type FeedbackKind string

const (
	KindSuccess       FeedbackKind = "success"
	KindPartial       FeedbackKind = "partial"
	KindFailure       FeedbackKind = "failure"
	KindDeleteSuccess FeedbackKind = "delete-success"
	KindDeleteFailure FeedbackKind = "delete-failure"
)

// EntityError is a per-entry rejection reported by the backend
type EntityError struct {
	UserID string `json:"user_id,omitempty"`
	TeamID string `json:"team_id,omitempty"`
	Error  string `json:"error"`
}

// Feedback is the result banner of a batch, delete or prize operation
type Feedback interface {
	Kind() FeedbackKind
}

// Success means every submitted item was recorded
type Success struct {
	Count int
}

// Partial means some items were recorded and some were rejected
type Partial struct {
	Count  int
	Total  int
	Errors []EntityError
}

// Failure means nothing was recorded
type Failure struct {
	Errors []EntityError
}

// DeleteSuccess carries the backend's confirmation message
type DeleteSuccess struct {
	Message string
}

// DeleteFailure carries the backend's error message or a generic fallback
type DeleteFailure struct {
	Message string
}

func (Success) Kind() FeedbackKind       { return KindSuccess }
func (Partial) Kind() FeedbackKind       { return KindPartial }
func (Failure) Kind() FeedbackKind       { return KindFailure }
func (DeleteSuccess) Kind() FeedbackKind { return KindDeleteSuccess }
func (DeleteFailure) Kind() FeedbackKind { return KindDeleteFailure }

// Banner is the JSON shape of a feedback value
type Banner struct {
	Kind      FeedbackKind  `json:"kind"`
	Count     int           `json:"count,omitempty"`
	Total     int           `json:"total,omitempty"`
	Errors    []EntityError `json:"errors,omitempty"`
	Message   string        `json:"message,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

// NewBanner flattens fb. A zero expires means the banner stays until dismissed.
func NewBanner(fb Feedback, expires time.Time) *Banner {
	b := &Banner{Kind: fb.Kind()}
	switch v := fb.(type) {
	case Success:
		b.Count = v.Count
	case Partial:
		b.Count, b.Total, b.Errors = v.Count, v.Total, v.Errors
	case Failure:
		b.Errors = v.Errors
	case DeleteSuccess:
		b.Message = v.Message
	case DeleteFailure:
		b.Message = v.Message
	}
	if !expires.IsZero() {
		b.ExpiresAt = &expires
	}
	return b
}

// feedbackSlot holds one transient banner. Expiry is evaluated on read
// against the controller clock.
type feedbackSlot struct {
	current Feedback
	expires time.Time
}

func (s *feedbackSlot) set(fb Feedback, now time.Time, ttl time.Duration) {
	s.current = fb
	s.expires = time.Time{}
	if ttl > 0 {
		s.expires = now.Add(ttl)
	}
}

func (s *feedbackSlot) get(now time.Time) (Feedback, time.Time) {
	if s.current == nil {
		return nil, time.Time{}
	}
	if !s.expires.IsZero() && !now.Before(s.expires) {
		s.current = nil
		s.expires = time.Time{}
		return nil, time.Time{}
	}
	return s.current, s.expires
}

func (s *feedbackSlot) clear() {
	s.current = nil
	s.expires = time.Time{}
}

// batchTTL is how long a status batch banner stays up
func batchTTL(fb Feedback) time.Duration {
	if fb.Kind() == KindSuccess {
		return BatchSuccessTTL
	}
	return 0
}

// prizeTTL is how long a prize banner stays up
func prizeTTL(fb Feedback) time.Duration {
	if fb.Kind() == KindSuccess {
		return PrizeSuccessTTL
	}
	return 0
}

func userErrors(errs []eventsapi.UserError) []EntityError {
	out := make([]EntityError, 0, len(errs))
	for _, e := range errs {
		out = append(out, EntityError{UserID: e.UserID.String(), Error: e.Error})
	}
	return out
}

func teamErrors(errs []eventsapi.TeamError) []EntityError {
	out := make([]EntityError, 0, len(errs))
	for _, e := range errs {
		out = append(out, EntityError{TeamID: e.TeamID.String(), Error: e.Error})
	}
	return out
}

func prizeErrors(errs []eventsapi.PrizeError) []EntityError {
	out := make([]EntityError, 0, len(errs))
	for _, e := range errs {
		out = append(out, EntityError{UserID: e.UserID.String(), TeamID: e.TeamID.String(), Error: e.Error})
	}
	return out
}
