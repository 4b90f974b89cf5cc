package models

// Role is an account's role tier.
type Role string

const (
	RoleUser         Role = "user"
	RoleCityAdmin    Role = "city_admin"
	RoleStateAdmin   Role = "state_admin"
	RoleCentralAdmin Role = "central_admin"
	RoleNewsAdmin    Role = "news_admin"
	// RoleAdmin is the generic target role stamped on auto-created alerts;
	// room routing decides the actual audience.
	RoleAdmin Role = "admin"
)

// Admin is the slice of an account the engines care about.
type Admin struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Active bool   `json:"active"`
}

// IsAdmin reports whether the role is any jurisdictional admin tier.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleCityAdmin, RoleStateAdmin, RoleCentralAdmin:
		return true
	}
	return false
}

// AdminFilter narrows admin lookups. Zero-value fields are ignored.
// Only active admins are ever returned.
type AdminFilter struct {
	Role   Role
	Roles  []Role
	City   string
	State  string
	States []string
}
