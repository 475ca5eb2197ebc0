package domain

// Job status constants. A job only moves forward through these states;
// it never regresses except by deletion.
const (
	JobStatusAvailable = "Available"
	JobStatusPending   = "Pending"
	JobStatusActive    = "Active"
	JobStatusReady     = "Ready"
	JobStatusCompleted = "Completed"
)

// jobStatusRank orders the job lifecycle for forward-only checks.
var jobStatusRank = map[string]int{
	JobStatusAvailable: 0,
	JobStatusPending:   1,
	JobStatusActive:    2,
	JobStatusReady:     3,
	JobStatusCompleted: 4,
}

// ValidJobStatus reports whether s is one of the defined job states.
func ValidJobStatus(s string) bool {
	_, ok := jobStatusRank[s]
	return ok
}

// JobStatusAdvances reports whether moving from one status to another goes
// forward in the lifecycle.
func JobStatusAdvances(from, to string) bool {
	f, okF := jobStatusRank[from]
	t, okT := jobStatusRank[to]
	return okF && okT && t > f
}

// JobDeletable reports whether a job in the given status may be deleted.
// Active and Ready jobs are protected: an in-flight payment may reference them.
func JobDeletable(status string) bool {
	switch status {
	case JobStatusAvailable, JobStatusPending, JobStatusCompleted:
		return true
	}
	return false
}

// JobReadyable reports whether delivered files may be attached and the job
// marked Ready.
func JobReadyable(status string) bool {
	return status == JobStatusPending || status == JobStatusActive
}
