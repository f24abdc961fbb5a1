package handler

import "strings"

type registerRequest struct {
	Name                 string  `json:"name"                  validate:"required,min=3,max=50"`
	Email                string  `json:"email"                 validate:"required,email"`
	Password             string  `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"eqfield=Password"`
	Role                 *string `json:"role"                  validate:"omitempty,role"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    *userSummary `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorBody documents the error envelope rendered by the API error handler.
type errorBody struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	ID       *int64            `json:"id,omitempty"`
	Messages map[string]string `json:"messages,omitempty"`
}
