package types

// Principal is the verified identity making a request. It is built once by the
// authentication middleware and passed by value into the bookmark core.
type Principal struct {
	SubjectID string   `json:"sub"`
	Roles     []string `json:"roles"`
	Admin     bool     `json:"admin"`
}

// NewPrincipal builds a Principal and resolves the admin flag against adminRole.
func NewPrincipal(subjectID string, roles []string, adminRole string) Principal {
	if adminRole == "" {
		adminRole = DefaultAdminRole
	}
	copied := make([]string, len(roles))
	copy(copied, roles)

	p := Principal{SubjectID: subjectID, Roles: copied}
	p.Admin = p.HasRole(adminRole)
	return p
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the configured admin role.
func (p Principal) IsAdmin() bool {
	return p.Admin
}
