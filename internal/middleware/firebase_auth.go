package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserLookup finds the local user linked to a Firebase uid.
type FirebaseUserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
}

// FirebaseResolver accepts Firebase ID tokens as bearer tokens for users who
// have already been linked through Firebase login.
type FirebaseResolver struct {
	verifier IDTokenVerifier
	users    FirebaseUserLookup
}

func NewFirebaseResolver(verifier IDTokenVerifier, users FirebaseUserLookup) *FirebaseResolver {
	return &FirebaseResolver{verifier: verifier, users: users}
}

func (r *FirebaseResolver) Resolve(ctx context.Context, idToken string) (string, error) {
	token, err := r.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", apperror.Unauthorized("invalid or expired ID token")
	}
	user, err := r.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return "", apperror.Unauthorized("no account linked to this Firebase user")
	}
	return user.ID, nil
}
