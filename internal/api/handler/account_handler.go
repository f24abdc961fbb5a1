package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create creates an account on behalf of the authenticated actor.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      403   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	actor, err := resolveActor(c, h.accounts)
	if err != nil {
		return err
	}
	// Role gate first so a User-role actor is refused whatever the payload.
	if !domain.CanCreate(actor) {
		return domain.ErrForbidden
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.accounts.CreateUser(c.Request().Context(), toCreateInput(req), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(created))
}

// Update applies a partial update to an account.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Account ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Router       /users/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	actor, err := resolveActor(c, h.accounts)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateUser(c.Request().Context(), id, toUpdateInput(req), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

// List returns a page of active accounts.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring of name or email"
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        sortBy  query     string  false  "name, email or created_at"
// @Success      200     {object}  listUsersResponse
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	actor, err := resolveActor(c, h.accounts)
	if err != nil {
		return err
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		page = 1
	}

	result, err := h.accounts.ListUsers(c.Request().Context(), ports.ListAccountsInput{
		Search: c.QueryParam("search"),
		SortBy: c.QueryParam("sortBy"),
		Page:   page,
	}, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListUsersResponse(result))
}

// Get returns a single account.
//
// @Summary      View an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  accountResponse
// @Failure      404  {object}  errorBody
// @Router       /users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	if _, err := resolveActor(c, h.accounts); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}
