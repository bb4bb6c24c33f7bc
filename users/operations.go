package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"user-accounts-backend/apperror"
	"user-accounts-backend/authentication"
	"user-accounts-backend/response"
)

// OperationRequest is the body of the single query/mutation endpoint.
type OperationRequest struct {
	Operation Operation       `json:"operation"`
	Arguments json.RawMessage `json:"arguments"`
}

type idArgs struct {
	ID string `json:"id"`
}

type updateArgs struct {
	ID string `json:"id"`
	UpdateUserRequest
}

// HandleQuery dispatches {operation, arguments} to the named operation and
// answers with the same envelope as the REST routes.
func (h *Handler) HandleQuery(c *gin.Context) {
	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Operation == "" {
		response.Fail(c, errInvalidBody)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	env, err := h.dispatch(ctx, authentication.CallerFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(env.Code, env)
}

func (h *Handler) dispatch(ctx context.Context, caller *authentication.Identity, req OperationRequest) (response.Envelope, error) {
	switch req.Operation {
	case OpGetUser:
		var args idArgs
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		user, err := h.service.GetUser(ctx, caller, args.ID)
		if err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusOK, "User fetched successfully", NewUserResponse(user)), nil

	case OpGetUsers:
		var args ListUsersRequest
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		page, err := h.service.GetUsers(ctx, caller, args)
		if err != nil {
			return response.Envelope{}, err
		}
		env := response.Success(http.StatusOK, "Users fetched successfully", NewUserResponses(page.Users))
		env.PageInfo = &page.Info
		return env, nil

	case OpCreateUser:
		var args CreateUserRequest
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		user, err := h.service.CreateUser(ctx, caller, args)
		if err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusCreated, "User created successfully", NewUserResponse(user)), nil

	case OpLoginUser:
		var args LoginRequest
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		session, err := h.service.LoginUser(ctx, args)
		if err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusOK, "Login successful", newLoginResponse(session)), nil

	case OpUpdateUser:
		var args updateArgs
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		user, err := h.service.UpdateUser(ctx, caller, args.ID, args.UpdateUserRequest)
		if err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusOK, "User updated successfully", NewUserResponse(user)), nil

	case OpDeleteUser:
		var args idArgs
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		user, err := h.service.DeleteUser(ctx, caller, args.ID)
		if err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusOK, "User deleted successfully", NewUserResponse(user)), nil

	case OpMe:
		user, err := h.service.Me(ctx, caller)
		if err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusOK, "User fetched successfully", NewUserResponse(user)), nil

	case OpChangePassword:
		var args ChangePasswordRequest
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return response.Envelope{}, err
		}
		if err := h.service.ChangePassword(ctx, caller, args); err != nil {
			return response.Envelope{}, err
		}
		return response.Success(http.StatusOK, "Password changed successfully", nil), nil
	}

	return response.Envelope{}, apperror.New(apperror.ErrValidation, "unknown operation "+string(req.Operation))
}

func decodeArguments(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.New(apperror.ErrValidation, "invalid arguments")
	}
	return nil
}
