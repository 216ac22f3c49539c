package models

// Role is the access level stored both in the user profile and in the
// identity account's "role" custom claim.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDoctor   Role = "doctor"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
