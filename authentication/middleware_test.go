package authentication

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"user-accounts-backend/apperror"
	"user-accounts-backend/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	accounts map[string]*Identity
	err      error
}

func (f *fakeResolver) ResolveAccount(ctx context.Context, id string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	acc, ok := f.accounts[id]
	if !ok {
		return nil, errors.Wrap(apperror.ErrUserNotFound, "resolve")
	}
	return acc, nil
}

func newTestRouter(t *testing.T, resolver AccountResolver) (*gin.Engine, *Authority) {
	t.Helper()
	authority, err := NewAuthority([]byte("middleware-secret"), time.Hour)
	require.NoError(t, err)

	h := NewHandler(authority, resolver, time.Second, zap.NewNop())
	r := gin.New()
	r.Use(h.AuthMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, caller)
	})
	return r, authority
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAnonymous(t *testing.T) {
	r, _ := newTestRouter(t, &fakeResolver{})

	w := doRequest(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
}

func TestAuthMiddlewareResolvesStoredAccount(t *testing.T) {
	// the stored role wins over the role in the token
	stored := &Identity{ID: "u1", Username: "bob", Email: "bob@example.com", Role: RoleUser}
	r, authority := newTestRouter(t, &fakeResolver{accounts: map[string]*Identity{"u1": stored}})

	tok, _, err := authority.Issue(Identity{ID: "u1", Username: "bob", Email: "bob@example.com", Role: RoleAdmin})
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)

	var got Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *stored, got)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	r, authority := newTestRouter(t, &fakeResolver{accounts: map[string]*Identity{}})

	gone, _, err := authority.Issue(Identity{ID: "deleted", Role: RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
		msg    string
	}{
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "invalid token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "invalid token"},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "invalid token"},
		{"account gone", "Bearer " + gone, http.StatusForbidden, "account no longer exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.header)
			assert.Equal(t, tt.code, w.Code)

			var env response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.msg, env.Message)
		})
	}
}

func TestAuthMiddlewareResolverFailure(t *testing.T) {
	r, authority := newTestRouter(t, &fakeResolver{err: errors.New("server selection timeout")})

	tok, _, err := authority.Issue(Identity{ID: "u1", Role: RoleUser})
	require.NoError(t, err)

	w := doRequest(r, "bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
