package model

const (
	RoleLearner = "learner"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Identity is the authenticated caller, extracted from the bearer token by
// the auth middleware and passed to every guarded operation.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
