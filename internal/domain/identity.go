package domain

import "time"

// Role distinguishes the two identity pools.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Identity is the directory projection of a student or faculty member:
// everything mention resolution and display needs, nothing more.
type Identity struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
}

// ValidUsername reports whether s is a canonical handle: 3-30 chars of
// lowercase letters, digits, underscore or dot.
func ValidUsername(s string) bool {
	if len(s) < 3 || len(s) > 30 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '.' {
			continue
		}
		return false
	}
	return true
}

// Student is the domain model for hostel residents who file queries.
type Student struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Hostel       string
	RoomNo       string
	Year         *int
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Faculty models a faculty member who triages and resolves queries.
type Faculty struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Department   string
	Designation  string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AsIdentity projects the student into the directory shape.
func (s *Student) AsIdentity() Identity {
	return Identity{ID: s.ID, Role: RoleStudent, Username: s.Username, DisplayName: s.Name}
}

// AsIdentity projects the faculty member into the directory shape.
func (f *Faculty) AsIdentity() Identity {
	return Identity{ID: f.ID, Role: RoleFaculty, Username: f.Username, DisplayName: f.Name}
}
