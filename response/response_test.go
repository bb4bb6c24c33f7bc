package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"user-accounts-backend/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestFailHidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, errors.Wrap(errors.New("server selection timeout"), "find user"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusInternalServerError, env.Code)
	assert.Equal(t, "internal error", env.Message)
	assert.Len(t, c.Errors, 1)
}

func TestAbortStopsChain(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, apperror.ErrMissingToken)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authorization header required", decode(t, w).Message)
}

func TestPage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Page(c, "ok", []string{"a"}, PageInfo{TotalUsers: 5, TotalPages: 3, CurrentPage: 2, Limit: 2})

	env := decode(t, w)
	assert.True(t, env.Success)
	require.NotNil(t, env.PageInfo)
	assert.Equal(t, PageInfo{TotalUsers: 5, TotalPages: 3, CurrentPage: 2, Limit: 2}, *env.PageInfo)
}
