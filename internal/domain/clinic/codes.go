package clinic

import (
	"fmt"
	"time"
)

// formatVisitCode renders V<YYMMDD><seq>. seq is zero-padded to three digits
// and grows past that once ids exceed 999.
func formatVisitCode(day time.Time, id int64) string {
	return fmt.Sprintf("V%s%03d", day.Format("060102"), id)
}

func formatToken(n int64) string {
	return fmt.Sprintf("T-%03d", n)
}

// visitTransitions lists the allowed forward moves of the visit lifecycle.
// completed and cancelled are terminal.
var visitTransitions = map[string][]string{
	VisitWaiting:        {VisitInConsultation, VisitCancelled},
	VisitInConsultation: {VisitCompleted, VisitCancelled},
}

// CanTransition reports whether a visit may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range visitTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
