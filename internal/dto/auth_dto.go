package dto

// InstructorLoginRequest carries instructor credentials.
type InstructorLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest carries student credentials. Students authenticate
// with their academic registration number instead of a username.
type StudentLoginRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required"`
	Password           string `json:"password" validate:"required"`
}

// SessionResponse describes the authenticated principal returned on login.
type SessionResponse struct {
	Role string `json:"role"`
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
