package services

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

type stubIssuer struct{}

func (stubIssuer) Issue(user *models.User) (string, error) {
	return "token-for-" + user.ID, nil
}

type stubVerifier struct {
	tokens map[string]*auth.Token
}

func (v stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	tok, ok := v.tokens[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return tok, nil
}

func newAuth(h *harness, verifier IDTokenVerifier) *AuthService {
	return NewAuthService(h.users, stubIssuer{}, verifier)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "")
	svc := newAuth(h, nil)

	res, err := svc.Register(ctx, models.RegisterRequest{
		Email:    "Alice@Example.com",
		Username: "Alice",
		Password: "s3cret!!",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "token-for-"+res.User.ID, res.Token)
	assert.NotEqual(t, "s3cret!!", res.User.PasswordHash)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "s3cret!!"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "s3cret!!"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRegisterConflicts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "")
	svc := newAuth(h, nil)
	_, err := svc.Register(ctx, models.RegisterRequest{Email: "a@example.com", Username: "alice", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "A@example.com", Username: "other", Password: "password"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "b@example.com", Username: "ALICE", Password: "password"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestFirebaseLoginDisabled(t *testing.T) {
	h := newHarness(t, "")

	_, err := newAuth(h, nil).FirebaseLogin(context.Background(), "anything")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestFirebaseLoginCreatesThenReusesUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "")
	svc := newAuth(h, stubVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "fb-1", Claims: map[string]interface{}{"email": "new.person@example.com", "name": "New Person"}},
	}})

	_, err := svc.FirebaseLogin(ctx, "bad")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	first, err := svc.FirebaseLogin(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "new.person@example.com", first.User.Email)
	assert.Equal(t, "New Person", first.User.Name)
	assert.Regexp(t, `^new\.person_[0-9a-f]{8}$`, first.User.Username)

	second, err := svc.FirebaseLogin(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestFirebaseLoginLinksExistingEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "")
	svc := newAuth(h, stubVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "fb-2", Claims: map[string]interface{}{"email": "alice@example.com"}},
		"anon": {UID: "fb-3", Claims: map[string]interface{}{}},
	}})
	reg, err := svc.Register(ctx, models.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password"})
	require.NoError(t, err)

	res, err := svc.FirebaseLogin(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	linked, err := h.users.GetUserByFirebaseUID(ctx, "fb-2")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, linked.ID)

	_, err = svc.FirebaseLogin(ctx, "anon")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Regexp(t, `^user_[0-9a-f]{8}$`, usernameFromEmail("x@example.com"))
	assert.Regexp(t, `^john\.doetag_[0-9a-f]{8}$`, usernameFromEmail("John.Doe+tag@example.com"))
	assert.LessOrEqual(t, len(usernameFromEmail("averyveryveryverylongemailaddress@example.com")), 30)
}
