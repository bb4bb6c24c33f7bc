package users

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"user-accounts-backend/apperror"
	"user-accounts-backend/authentication"
	"user-accounts-backend/response"
)

type Handler struct {
	service *Service
	timeout time.Duration
}

func NewHandler(service *Service, timeout time.Duration) *Handler {
	return &Handler{
		service: service,
		timeout: timeout,
	}
}

// RegisterRoutes mounts the account routes on api. Login stays outside
// authMiddleware so a stale token in the request cannot block signing in.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	api.POST("/login", h.HandleLogin)

	guarded := api.Group("", authMiddleware)
	guarded.POST("/query", h.HandleQuery)

	guarded.GET("/me", h.HandleMe)
	guarded.PUT("/me/password", h.HandleChangePassword)

	guarded.GET("/users", h.HandleGetUsers)
	guarded.POST("/users", h.HandleCreateUser)
	guarded.GET("/users/:id", h.HandleGetUser)
	guarded.PUT("/users/:id", h.HandleUpdateUser)
	guarded.DELETE("/users/:id", h.HandleDeleteUser)
}

func (h *Handler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

var errInvalidBody = apperror.New(apperror.ErrValidation, "invalid request body")

// HandleLogin handles the login request
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	session, err := h.service.LoginUser(ctx, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "Login successful", newLoginResponse(session))
}

// HandleGetUsers lists users with pagination, sorting and filtering from the query string.
func (h *Handler) HandleGetUsers(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, apperror.New(apperror.ErrValidation, "invalid query parameters"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	page, err := h.service.GetUsers(ctx, authentication.CallerFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Page(c, "Users fetched successfully", NewUserResponses(page.Users), page.Info)
}

func (h *Handler) HandleGetUser(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.service.GetUser(ctx, authentication.CallerFrom(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "User fetched successfully", NewUserResponse(user))
}

func (h *Handler) HandleCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.service.CreateUser(ctx, authentication.CallerFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "User created successfully", NewUserResponse(user))
}

func (h *Handler) HandleUpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.service.UpdateUser(ctx, authentication.CallerFrom(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "User updated successfully", NewUserResponse(user))
}

func (h *Handler) HandleDeleteUser(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.service.DeleteUser(ctx, authentication.CallerFrom(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "User deleted successfully", NewUserResponse(user))
}

// HandleMe returns the caller's own account.
func (h *Handler) HandleMe(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.service.Me(ctx, authentication.CallerFrom(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "User fetched successfully", NewUserResponse(user))
}

func (h *Handler) HandleChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.service.ChangePassword(ctx, authentication.CallerFrom(c), req); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Password changed successfully", nil))
}

func newLoginResponse(s *Session) LoginResponse {
	return LoginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      NewUserResponse(s.User),
	}
}
