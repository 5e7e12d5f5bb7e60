package dto

import "time"

// StudentSignupRequest payload for new students.
type StudentSignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Hostel   string `json:"hostel"`
	RoomNo   string `json:"room_no"`
	Year     *int   `json:"year"`
	Phone    string `json:"phone"`
}

// FacultySignupRequest payload for new faculty members.
type FacultySignupRequest struct {
	Name        string `json:"name" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Department  string `json:"department" validate:"required"`
	Designation string `json:"designation" validate:"required"`
	Phone       string `json:"phone"`
}

// LoginRequest payload for login (either pool).
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
