package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// User is the identity record (PostgreSQL). IDs are ObjectID hex strings so
// they sort by creation time and can be referenced from Mongo documents.
type User struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:24"`
	Email               string     `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Username            string     `json:"username" gorm:"uniqueIndex;size:30;not null"`
	PasswordHash        string     `json:"-"`
	Name                string     `json:"name" gorm:"size:100"`
	Bio                 string     `json:"bio" gorm:"size:160"`
	Website             string     `json:"website"`
	Avatar              string     `json:"avatar"`
	FirebaseUID         *string    `json:"-" gorm:"uniqueIndex"`
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	return nil
}

// UserCompact is the public projection joined into posts, comments and notifications.
type UserCompact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, Name: u.Name, Avatar: u.Avatar}
}

// PublicUser is what other users may see of an account. Email, timestamps
// and credentials stay on User, which is only returned to its owner.
type PublicUser struct {
	UserCompact
	Bio     string `json:"bio"`
	Website string `json:"website"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{UserCompact: u.ToCompact(), Bio: u.Bio, Website: u.Website}
}

// Profile is a user with social counts as seen by a viewer.
type Profile struct {
	User           PublicUser `json:"user"`
	FollowersCount int64      `json:"followersCount"`
	FollowingCount int64      `json:"followingCount"`
	PostsCount     int64      `json:"postsCount"`
	IsFollowing    bool       `json:"isFollowing"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest carries optional fields; nil means unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=160"`
	Website  *string `json:"website" validate:"omitempty,url"`
	Username *string `json:"username" validate:"omitempty,min=3,max=30,username"`
}

type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
