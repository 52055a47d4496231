package normalize

import "strings"

// VisitState is the closed classification of the platform's free-text
// visit labels. Business logic branches on this enum only; the fragile
// substring matching lives here and nowhere else.
type VisitState int

const (
	VisitUnknown VisitState = iota
	VisitAwaiting
	VisitCompleted
	VisitCanceled
)

func (s VisitState) String() string {
	switch s {
	case VisitAwaiting:
		return "awaiting"
	case VisitCompleted:
		return "completed"
	case VisitCanceled:
		return "canceled"
	}
	return "unknown"
}

// Label variants observed in the platform's journal.
var (
	completedMarks = []string{"завершен", "завершён", "completed"}
	canceledMarks  = []string{"отменен", "отменён", "отменена", "отменено", "удалена", "удален", "canceled"}
	awaitingMarks  = []string{"ожидает", "awaiting"}
)

// ClassifyVisit maps a raw visit label to a VisitState.
func ClassifyVisit(label string) VisitState {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return VisitUnknown
	}
	for _, m := range completedMarks {
		if strings.Contains(s, m) {
			return VisitCompleted
		}
	}
	for _, m := range canceledMarks {
		if strings.Contains(s, m) {
			return VisitCanceled
		}
	}
	for _, m := range awaitingMarks {
		if strings.Contains(s, m) {
			return VisitAwaiting
		}
	}
	return VisitUnknown
}
