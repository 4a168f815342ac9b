package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}
