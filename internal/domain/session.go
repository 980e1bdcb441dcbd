package domain

// RoleTechnician marks field staff, who are turned away from the report panel
const RoleTechnician = "technician"

// Session identifies the user driving a report panel
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
}

// Valid reports whether the session carries a user
func (s Session) Valid() bool {
	return s.UserID != ""
}

// DisplayName falls back to the user id when no name was issued
func (s Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.UserID
}

// CanViewReports reports whether the session may open the report panel
func (s Session) CanViewReports() bool {
	return s.Role != RoleTechnician
}
