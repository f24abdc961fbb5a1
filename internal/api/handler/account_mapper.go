package handler

import (
	"time"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role.Lower(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toListUsersResponse(r *ports.ListAccountsResult) listUsersResponse {
	users := make([]accountListItem, 0, len(r.Items))
	for _, it := range r.Items {
		users = append(users, accountListItem{
			ID:          it.ID,
			Email:       it.Email,
			Name:        it.Name,
			Role:        it.Role.Lower(),
			CreatedAt:   it.CreatedAt.UTC().Format(time.RFC3339),
			OrdersCount: it.OrdersCount,
			CanEdit:     it.CanEdit,
		})
	}
	return listUsersResponse{
		Page:       r.Page,
		PageSize:   r.PageSize,
		Total:      r.Total,
		TotalPages: r.TotalPages,
		Users:      users,
	}
}

func toCreateInput(req createUserRequest) ports.CreateAccountInput {
	return ports.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     parseRoleField(req.Role),
		Active:   req.Active,
	}
}

func toUpdateInput(req updateUserRequest) ports.UpdateAccountInput {
	return ports.UpdateAccountInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   parseRoleField(req.Role),
		Active: req.Active,
	}
}
