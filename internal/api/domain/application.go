package domain

// Job application status constants. Every transition out of Pending is
// terminal; the first decision wins.
const (
	ApplicationStatusPending   = "Pending"
	ApplicationStatusAccepted  = "Accepted"
	ApplicationStatusRejected  = "Rejected"
	ApplicationStatusCancelled = "Cancelled"
)

// ValidApplicationAction reports whether action is a decidable terminal state.
func ValidApplicationAction(action string) bool {
	switch action {
	case ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusCancelled:
		return true
	}
	return false
}
