package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/testutil"
	"github.com/anonto42/foodgram/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type stubVerifier struct {
	token *auth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.err
}

func firebaseToken(uid, email string, verified bool) *auth.Token {
	return &auth.Token{UID: uid, Claims: map[string]interface{}{
		"email":          email,
		"email_verified": verified,
		"name":           "Fire Base",
	}}
}

func newAuthServer(t *testing.T, verifier TokenVerifier) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	users := repositories.NewPostgresUserRepository(db)

	e := echo.New()
	e.Validator = validators.NewValidator()
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	NewAuthHandler(users, verifier, testSecret, time.Hour).RegisterAuthRoutes(
		e.Group("/api/auth"),
		middleware.JWTAuthMiddleware(middleware.JWTConfig{Secret: testSecret, Users: users}),
		passthrough,
	)
	return e, db
}

func firebaseLogin(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/firebase-login", strings.NewReader(`{"idToken":"id-token"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func tokenUserID(t *testing.T, rec *httptest.ResponseRecorder) uint {
	t.Helper()
	var body struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AuthToken)
	claims, err := middleware.ParseToken(body.AuthToken, testSecret)
	require.NoError(t, err)
	return claims.UserID
}

func TestFirebaseLogin_MatchesByUID(t *testing.T) {
	stub := &stubVerifier{}
	e, db := newAuthServer(t, stub)

	user := testutil.CreateUser(t, db, "linked")
	uid := "uid-linked"
	user.FirebaseUID = &uid
	require.NoError(t, db.Save(user).Error)

	// The email claim is ignored once the UID is known.
	stub.token = firebaseToken(uid, "changed@example.com", false)
	rec := firebaseLogin(e)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, user.ID, tokenUserID(t, rec))
}

func TestFirebaseLogin_LinksVerifiedEmail(t *testing.T) {
	stub := &stubVerifier{}
	e, db := newAuthServer(t, stub)
	user := testutil.CreateUser(t, db, "chef")

	stub.token = firebaseToken("uid-chef", "chef@example.com", true)
	rec := firebaseLogin(e)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, user.ID, tokenUserID(t, rec))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.FirebaseUID)
	assert.Equal(t, "uid-chef", *reloaded.FirebaseUID)
}

func TestFirebaseLogin_RefusesUnverifiedEmail(t *testing.T) {
	stub := &stubVerifier{}
	e, db := newAuthServer(t, stub)
	victim := testutil.CreateUser(t, db, "victim")

	stub.token = firebaseToken("uid-attacker", "victim@example.com", false)
	rec := firebaseLogin(e)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotContains(t, rec.Body.String(), "auth_token")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, victim.ID).Error)
	assert.Nil(t, reloaded.FirebaseUID)

	// A missing claim counts as unverified.
	stub.token = &auth.Token{UID: "uid-attacker", Claims: map[string]interface{}{"email": "victim@example.com"}}
	assert.Equal(t, http.StatusConflict, firebaseLogin(e).Code)
}

func TestFirebaseLogin_CreatesAccount(t *testing.T) {
	stub := &stubVerifier{token: firebaseToken("uid-new", "new.cook@example.com", true)}
	e, db := newAuthServer(t, stub)
	require.NoError(t, db.Create(&models.User{
		Email: "other@example.com", Username: "new.cook", FirstName: "O", LastName: "C", Password: "x",
	}).Error)

	rec := firebaseLogin(e)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created models.User
	require.NoError(t, db.First(&created, tokenUserID(t, rec)).Error)
	assert.Equal(t, "new.cook@example.com", created.Email)
	assert.Equal(t, "new.cook1", created.Username, "taken usernames get a suffix")
	assert.Equal(t, "Fire", created.FirstName)
	assert.Equal(t, "Base", created.LastName)
}

func TestFirebaseLogin_RejectsBadToken(t *testing.T) {
	e, _ := newAuthServer(t, &stubVerifier{err: errors.New("expired")})
	assert.Equal(t, http.StatusUnauthorized, firebaseLogin(e).Code)

	e, _ = newAuthServer(t, &stubVerifier{token: &auth.Token{UID: "uid", Claims: map[string]interface{}{}}})
	assert.Equal(t, http.StatusBadRequest, firebaseLogin(e).Code)
}
