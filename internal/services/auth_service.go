package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/nanogram/backend/internal/models"
	"github.com/anonto42/nanogram/backend/internal/repositories"
	"github.com/anonto42/nanogram/backend/pkg/apperror"
)

// TokenIssuer signs local bearer tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

var usernameStrip = regexp.MustCompile(`[^a-z0-9._]`)

type AuthService struct {
	users    repositories.UserRepository
	tokens   TokenIssuer
	firebase IDTokenVerifier
}

// NewAuthService builds the service. firebase may be nil, which disables
// Firebase login.
func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, firebase IDTokenVerifier) *AuthService {
	return &AuthService{users: users, tokens: tokens, firebase: firebase}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("username already taken")
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	return s.respond(user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token, linking or
// creating the local user by firebase uid, then by email.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.firebase == nil {
		return nil, apperror.Unauthorized("firebase login is not enabled")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid Firebase ID token")
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return s.respond(user)
	}
	if !isNotFound(err) {
		return nil, err
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, apperror.InvalidArgument("firebase account has no email")
	}
	name, _ := token.Claims["name"].(string)
	uid := token.UID

	user, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	case isNotFound(err):
		user = &models.User{
			Email:       email,
			Username:    usernameFromEmail(email),
			Name:        name,
			FirebaseUID: &uid,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// usernameFromEmail derives a unique-enough username from the email local part.
func usernameFromEmail(email string) string {
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	local = usernameStrip.ReplaceAllString(local, "")
	if len(local) > 21 {
		local = local[:21]
	}
	if len(local) < 3 {
		local = "user"
	}
	return local + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
