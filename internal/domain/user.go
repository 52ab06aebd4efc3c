package domain

// UserRole enumerates case manager tiers.
type UserRole string

const (
	UserRoleACO       UserRole = "ACO"
	UserRoleACOSenior UserRole = "ACO_SENIOR"
	UserRoleAdmin     UserRole = "ADMIN"
)

// User is a logged-in case manager or administrator.
type User struct {
	Login          string
	DisplayName    string
	Role           UserRole
	Sector         string
	OperationCount int
}

// SeesAllOperations reports whether the user's portfolio spans every case manager.
func (u *User) SeesAllOperations() bool {
	return u != nil && u.Role == UserRoleAdmin
}
