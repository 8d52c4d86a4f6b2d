package domain

import "fmt"

// ApplicationStatus enumerates lifecycle states for a tracked application.
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "applied"
	StatusResponseReceived   ApplicationStatus = "response_received"
	StatusScreening          ApplicationStatus = "screening"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewCompleted ApplicationStatus = "interview_completed"
	StatusOffer              ApplicationStatus = "offer"
	StatusOfferAccepted      ApplicationStatus = "offer_accepted"
	StatusOfferDeclined      ApplicationStatus = "offer_declined"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
	StatusAbandoned          ApplicationStatus = "abandoned"
)

// StatusCategory is a coarse grouping used for filtering and display only.
// The transition validator never consults it.
type StatusCategory string

const (
	CategoryActive   StatusCategory = "active"
	CategorySuccess  StatusCategory = "success"
	CategoryClosed   StatusCategory = "closed"
	CategoryNegative StatusCategory = "negative"
)

// allowedTransitions is the authoritative adjacency table. A status mapping
// to an empty slice is terminal. Every known status has an entry, so
// membership in this map doubles as the enum membership check.
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:            {StatusResponseReceived, StatusScreening, StatusRejected, StatusWithdrawn, StatusAbandoned},
	StatusResponseReceived:   {StatusScreening, StatusInterviewScheduled, StatusRejected, StatusWithdrawn, StatusAbandoned},
	StatusScreening:          {StatusInterviewScheduled, StatusRejected, StatusWithdrawn, StatusAbandoned},
	StatusInterviewScheduled: {StatusInterviewCompleted, StatusRejected, StatusWithdrawn, StatusAbandoned},
	StatusInterviewCompleted: {StatusInterviewScheduled, StatusOffer, StatusRejected, StatusWithdrawn, StatusAbandoned},
	StatusOffer:              {StatusOfferAccepted, StatusOfferDeclined, StatusWithdrawn},
	StatusOfferAccepted:      {StatusAccepted},
	StatusOfferDeclined:      {},
	StatusAccepted:           {},
	StatusRejected:           {},
	StatusWithdrawn:          {},
	StatusAbandoned:          {},
}

var statusCategories = map[ApplicationStatus]StatusCategory{
	StatusApplied:            CategoryActive,
	StatusResponseReceived:   CategoryActive,
	StatusScreening:          CategoryActive,
	StatusInterviewScheduled: CategoryActive,
	StatusInterviewCompleted: CategoryActive,
	StatusOffer:              CategorySuccess,
	StatusOfferAccepted:      CategorySuccess,
	StatusAccepted:           CategorySuccess,
	StatusOfferDeclined:      CategoryClosed,
	StatusWithdrawn:          CategoryClosed,
	StatusAbandoned:          CategoryClosed,
	StatusRejected:           CategoryNegative,
}

// UnknownStatusError reports a value outside the enumeration. It is distinct
// from TransitionError so callers can surface it as a validation failure.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown application status %q", e.Value)
}

// TransitionError reports a transition absent from the table.
type TransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *TransitionError) Error() string {
	if IsTerminal(e.From) {
		return fmt.Sprintf("status %q is terminal, no transitions allowed", e.From)
	}
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}

// ParseStatus validates a raw value against the enumeration.
func ParseStatus(raw string) (ApplicationStatus, error) {
	status := ApplicationStatus(raw)
	if _, ok := allowedTransitions[status]; !ok {
		return "", &UnknownStatusError{Value: raw}
	}
	return status, nil
}

// ParseCategory validates a raw category value.
func ParseCategory(raw string) (StatusCategory, error) {
	category := StatusCategory(raw)
	switch category {
	case CategoryActive, CategorySuccess, CategoryClosed, CategoryNegative:
		return category, nil
	}
	return "", fmt.Errorf("unknown status category %q", raw)
}

// Category returns the grouping for a status.
func Category(status ApplicationStatus) (StatusCategory, error) {
	category, ok := statusCategories[status]
	if !ok {
		return "", &UnknownStatusError{Value: string(status)}
	}
	return category, nil
}

// StatusesInCategory expands a category to its member statuses.
func StatusesInCategory(category StatusCategory) []ApplicationStatus {
	var members []ApplicationStatus
	for status, cat := range statusCategories {
		if cat == category {
			members = append(members, status)
		}
	}
	return members
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status ApplicationStatus) bool {
	next, ok := allowedTransitions[status]
	return ok && len(next) == 0
}

// ValidateTransition decides whether current -> requested is legal.
// It does not special-case requested == current; callers reject that as a
// no-op before consulting the table.
func ValidateTransition(current, requested ApplicationStatus) error {
	next, ok := allowedTransitions[current]
	if !ok {
		return &UnknownStatusError{Value: string(current)}
	}
	if _, ok := allowedTransitions[requested]; !ok {
		return &UnknownStatusError{Value: string(requested)}
	}
	for _, candidate := range next {
		if candidate == requested {
			return nil
		}
	}
	return &TransitionError{From: current, To: requested}
}

// AllStatuses returns every member of the enumeration.
func AllStatuses() []ApplicationStatus {
	statuses := make([]ApplicationStatus, 0, len(allowedTransitions))
	for status := range allowedTransitions {
		statuses = append(statuses, status)
	}
	return statuses
}
