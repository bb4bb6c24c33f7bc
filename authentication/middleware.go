package authentication

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"user-accounts-backend/apperror"
	"user-accounts-backend/response"
)

const callerKey = "caller"

// AccountResolver looks up the current state of the account a token names.
// It returns an error matching apperror.ErrNotFound when the account is gone.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, id string) (*Identity, error)
}

type Handler struct {
	authority *Authority
	resolver  AccountResolver
	timeout   time.Duration
	logger    *zap.Logger
}

func NewHandler(authority *Authority, resolver AccountResolver, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		authority: authority,
		resolver:  resolver,
		timeout:   timeout,
		logger:    logger,
	}
}

// AuthMiddleware resolves the caller from the bearer token, if any.
// Requests without an Authorization header pass through anonymously and are
// gated by each operation; a header that does not verify is rejected here.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			response.Abort(c, apperror.ErrInvalidToken)
			return
		}

		claimed, err := h.authority.Verify(tokenString)
		if err != nil {
			h.logger.Debug("token rejected", zap.Error(err))
			response.Abort(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		caller, err := h.resolver.ResolveAccount(ctx, claimed.ID)
		if errors.Is(err, apperror.ErrNotFound) {
			response.Abort(c, apperror.ErrAccountGone)
			return
		} else if err != nil {
			h.logger.Error("resolve caller", zap.String("user_id", claimed.ID), zap.Error(err))
			response.Abort(c, err)
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the caller resolved by AuthMiddleware, nil for anonymous requests.
func CallerFrom(c *gin.Context) *Identity {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*Identity)
	return caller
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
