package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/repositories"
	"easyrent/internal/utils"
)

// TokenRevoker remembers logged-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	Users   repositories.UserRepository
	Secret  []byte
	TTL     time.Duration
	Revoker TokenRevoker
	Now     func() time.Time
}

// LoginResult is handed back to the client after a successful login.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      models.PublicUser `json:"user"`
}

type sessionClaims struct {
	Username string `json:"username"`
	FullName string `json:"name"`
	jwt.RegisteredClaims
}

var errBadCredentials = domain.AuthorizationError{Msg: "invalid email or password", Unauthenticated: true}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) Register(ctx context.Context, reg models.Registration) (models.PublicUser, error) {
	if err := validateRegistration(&reg); err != nil {
		return models.PublicUser{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		FullName:     reg.FullName,
		Username:     reg.Username,
		Email:        reg.Email,
		Contact:      reg.Contact,
		City:         reg.City,
		State:        reg.State,
		Pincode:      reg.Pincode,
		DOB:          reg.DOB,
		PasswordHash: string(hash),
	}
	id, err := s.Users.Create(ctx, u)
	if domain.IsConflict(err) {
		return models.PublicUser{}, err
	}
	if err != nil {
		return models.PublicUser{}, domain.PersistenceError{Op: "register user", Err: err}
	}
	u.ID = id
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "register", "user_id", id)
	return u.ToPublic(), nil
}

func validateRegistration(r *models.Registration) error {
	fields := []struct {
		name string
		val  *string
	}{
		{"fullName", &r.FullName}, {"dob", &r.DOB}, {"email", &r.Email}, {"contact", &r.Contact},
		{"city", &r.City}, {"state", &r.State}, {"pincode", &r.Pincode}, {"username", &r.Username},
	}
	for _, f := range fields {
		*f.val = strings.TrimSpace(*f.val)
		if *f.val == "" {
			return domain.ValidationError{Field: f.name, Msg: "all fields are required"}
		}
	}
	if r.Password == "" {
		return domain.ValidationError{Field: "password", Msg: "all fields are required"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return domain.ValidationError{Field: "email", Msg: "invalid email address"}
	}
	if _, err := time.Parse(domain.DateLayout, r.DOB); err != nil {
		return domain.ValidationError{Field: "dob", Msg: "expected YYYY-MM-DD"}
	}
	if len(r.Password) < 6 {
		return domain.ValidationError{Field: "password", Msg: "password must be at least 6 characters"}
	}
	return nil
}

// Login checks the password and issues a signed session token.
func (s AuthService) Login(ctx context.Context, login, password string) (LoginResult, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Field: "email", Msg: "email and password required"}
	}
	u, err := s.Users.FindByLogin(ctx, login)
	if domain.IsNotFound(err) {
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, domain.PersistenceError{Op: "load user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "login", "user_id", u.ID, "bad password")
		return LoginResult{}, errBadCredentials
	}

	now := s.now()
	exp := now.Add(s.TTL)
	claims := sessionClaims{
		Username: u.Username,
		FullName: u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "login", "user_id", u.ID)
	return LoginResult{Token: token, ExpiresAt: exp, User: u.ToPublic()}, nil
}

// Identify resolves a session token into an Identity. Expired, malformed and
// revoked tokens all come back as unauthenticated.
func (s AuthService) Identify(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		msg := "invalid session"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "session expired, please login again"
		}
		return domain.Identity{}, domain.AuthorizationError{Msg: msg, Unauthenticated: true}
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.ID == "" {
		return domain.Identity{}, domain.AuthorizationError{Msg: "invalid session", Unauthenticated: true}
	}
	if s.Revoker != nil {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.Identity{}, domain.PersistenceError{Op: "check session", Err: err}
		}
		if revoked {
			return domain.Identity{}, domain.AuthorizationError{Msg: "session ended, please login again", Unauthenticated: true}
		}
	}
	id := domain.Identity{
		UserID:   userID,
		Username: claims.Username,
		FullName: claims.FullName,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Logout revokes the token behind id until its natural expiry.
func (s AuthService) Logout(ctx context.Context, id domain.Identity) error {
	if err := domain.RequireIdentity(id); err != nil {
		return err
	}
	if s.Revoker == nil || id.TokenID == "" {
		return nil
	}
	until := id.ExpiresAt
	if until.IsZero() {
		until = s.now().Add(s.TTL)
	}
	if err := s.Revoker.Revoke(ctx, id.TokenID, until); err != nil {
		return domain.PersistenceError{Op: "logout", Err: err}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "logout", "user_id", id.UserID)
	return nil
}

// CurrentUser is the profile behind id.
func (s AuthService) CurrentUser(ctx context.Context, id domain.Identity) (models.PublicUser, error) {
	if err := domain.RequireIdentity(id); err != nil {
		return models.PublicUser{}, err
	}
	u, err := s.Users.GetByID(ctx, id.UserID)
	if domain.IsNotFound(err) {
		return models.PublicUser{}, err
	}
	if err != nil {
		return models.PublicUser{}, domain.PersistenceError{Op: "load user", Err: err}
	}
	return u.ToPublic(), nil
}
