package domain

// User role constants. Roles form a closed set; each operation boundary
// checks the capability it needs instead of inspecting the concrete role.
const (
	RoleEmployer   = "employer"
	RoleFreelancer = "freelancer"
)

// Capabilities is the small per-role attribute set checked at operation
// boundaries.
type Capabilities struct {
	CanOwnJobs bool
	CanApply   bool
}

// CapabilitiesFor returns the capability set for a role. Unknown roles get
// an empty set.
func CapabilitiesFor(role string) Capabilities {
	switch role {
	case RoleEmployer:
		return Capabilities{CanOwnJobs: true}
	case RoleFreelancer:
		return Capabilities{CanApply: true}
	}
	return Capabilities{}
}
