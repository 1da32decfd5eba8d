package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/utils"
)

func sessionContext(t *testing.T, token string, viaCookie bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/cart", nil)
	if token != "" {
		if viaCookie {
			req.AddCookie(&http.Cookie{Name: utils.TokenCookieName, Value: token})
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestSessionMiddlewareFromCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID.Hex(), "Shopper@Example.com", false)
	require.NoError(t, err)

	c, _ := sessionContext(t, token, true)
	err = SessionMiddleware()(okHandler)(c)
	require.NoError(t, err)

	resolved, err := UserID(c)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
	assert.Equal(t, "shopper@example.com", Email(c), "email lowercased")
	assert.Equal(t, false, c.Get(ContextIsAdmin))
}

func TestSessionMiddlewareFromBearerHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID.Hex(), "shopper@example.com", false)
	require.NoError(t, err)

	c, _ := sessionContext(t, token, false)
	require.NoError(t, SessionMiddleware()(okHandler)(c))

	resolved, err := UserID(c)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestSessionMiddlewareRejectsMissingToken(t *testing.T) {
	c, _ := sessionContext(t, "", true)
	err := SessionMiddleware()(okHandler)(c)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}

func TestSessionMiddlewareRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.GenerateJWT(primitive.NewObjectID().Hex(), "shopper@example.com", false)
	require.NoError(t, err)

	c, _ := sessionContext(t, token+"x", true)
	err = SessionMiddleware()(okHandler)(c)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}

func TestAdminMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	adminToken, err := utils.GenerateJWT("", "admin@example.com", true)
	require.NoError(t, err)
	c, _ := sessionContext(t, adminToken, true)
	handler := SessionMiddleware()(AdminMiddleware()(okHandler))
	assert.NoError(t, handler(c))

	userToken, err := utils.GenerateJWT(primitive.NewObjectID().Hex(), "shopper@example.com", false)
	require.NoError(t, err)
	c, _ = sessionContext(t, userToken, true)
	err = handler(c)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}

func TestUserIDMissingFromAdminSession(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	adminToken, err := utils.GenerateJWT("", "admin@example.com", true)
	require.NoError(t, err)

	c, _ := sessionContext(t, adminToken, true)
	require.NoError(t, SessionMiddleware()(okHandler)(c))

	_, err = UserID(c)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}
