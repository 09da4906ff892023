package model

import "time"

// User represents a registered user in the database.
type User struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	PasswordHash     string `json:"-"`
	ProfileImagePath string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RegisterRequest holds the text fields of a registration form.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	ProfileImagePath string    `json:"profileImagePath"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewUserResponse copies the public fields of u. The password hash is never copied.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		ProfileImagePath: u.ProfileImagePath,
		CreatedAt:        u.CreatedAt,
	}
}
