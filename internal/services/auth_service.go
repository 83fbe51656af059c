package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"articledesk/internal/domain"
	"articledesk/internal/domain/models"
	"articledesk/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// registrationRoles maps the role names offered at sign-up onto identity
// roles.
var registrationRoles = map[string]domain.Role{
	"MILITARY":  domain.RoleAdmin,
	"VOLUNTEER": domain.RoleUser,
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t Tokens) Issue(id domain.Identity) (string, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.ID,
		"name": id.Username,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	s, err := tok.SignedString(t.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "sign token", Err: err}
	}
	return s, nil
}

// Verify checks the signature and expiry and returns the identity the
// token carries.
func (t Tokens) Verify(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return domain.Identity{}, domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil || sub == "" {
		return domain.Identity{}, domain.UnauthorizedError{Msg: "invalid token claims"}
	}
	return domain.Identity{ID: sub, Username: name, Role: role}, nil
}

type AuthService struct {
	Users     UserStore
	Tokens    Tokens
	RequestID string
}

// Register creates the account and signs it in.
func (s AuthService) Register(ctx context.Context, username, password, role string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", domain.ValidationError{Field: "username", Msg: "username is required"}
	}
	if len([]rune(password)) < minPasswordLength {
		return "", domain.ValidationError{Field: "password", Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	r, ok := registrationRoles[strings.ToUpper(strings.TrimSpace(role))]
	if !ok {
		return "", domain.ValidationError{Field: "role", Msg: "role must be MILITARY or VOLUNTEER"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.InternalError{Msg: "hash password", Err: err}
	}
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         r,
		CreatedAt:    utils.NowUTC(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return "", err
	}
	utils.LogEvent(s.RequestID, "auth", "register", "user_id", u.ID, "role", u.Role)
	return s.Tokens.Issue(u.Identity())
}

// Login never reveals whether the username exists.
func (s AuthService) Login(ctx context.Context, username, password string) (string, error) {
	invalid := domain.UnauthorizedError{Msg: "invalid username or password"}
	u, err := s.Users.GetByUsername(ctx, username)
	if domain.IsNotFound(err) {
		return "", invalid
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(s.RequestID, "auth", "login_failed", "user_id", u.ID)
		return "", invalid
	}
	utils.LogEvent(s.RequestID, "auth", "login", "user_id", u.ID)
	return s.Tokens.Issue(u.Identity())
}
