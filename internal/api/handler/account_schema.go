package handler

import (
	"strings"

	"github.com/99minutos/users-api/internal/core/domain"
)

type createUserRequest struct {
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     string  `json:"name"     validate:"required,min=3,max=50"`
	Role     *string `json:"role"     validate:"omitempty,role"`
	Active   *bool   `json:"active"`
}

type updateUserRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=3,max=50"`
	Email  *string `json:"email"  validate:"omitempty,email"`
	Role   *string `json:"role"   validate:"omitempty,role"`
	Active *bool   `json:"active"`
}

// normalize trims free-text fields so length rules see the stored value.
func (r *createUserRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *updateUserRequest) normalize() {
	r.Name = trimmedPtr(r.Name)
	r.Email = trimmedPtr(r.Email)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// accountResponse is the wire form of an account. Role is lower-cased and
// no password material is ever included.
type accountResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type accountListItem struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
	OrdersCount int64  `json:"orders_count"`
	CanEdit     bool   `json:"can_edit"`
}

type listUsersResponse struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
	Users      []accountListItem `json:"users"`
}

// parseRoleField resolves an already validated role field.
func parseRoleField(s *string) *domain.Role {
	if s == nil {
		return nil
	}
	r, ok := domain.ParseRole(*s)
	if !ok {
		return nil
	}
	return &r
}
