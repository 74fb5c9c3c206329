package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

// AuthUseCase handles customer accounts, tokens and actor resolution.
type AuthUseCase struct {
	users       repository.UserRepository
	hasher      pkgAuth.PasswordHasher
	tokens      pkgAuth.Strategy
	adminLogins map[string]struct{}
}

// NewAuthUseCase constructs AuthUseCase. Logins in adminLogins are treated
// as staff in addition to users flagged as admin.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, adminLogins []string) *AuthUseCase {
	admins := make(map[string]struct{}, len(adminLogins))
	for _, login := range adminLogins {
		if login = strings.TrimSpace(login); login != "" {
			admins[login] = struct{}{}
		}
	}
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, adminLogins: admins}
}

// Register creates an account and returns its auth token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// Authenticate validates credentials and returns a fresh token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// ParseToken extracts the user id from token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// Actor resolves the caller's identity and role. A user deleted after the
// token was issued is reported as ErrInvalidCredentials.
func (u *AuthUseCase) Actor(ctx context.Context, userID int64) (model.Actor, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Actor{}, domainErrors.ErrInvalidCredentials
		}
		return model.Actor{}, err
	}
	_, listed := u.adminLogins[usr.Login]
	return model.Actor{UserID: usr.ID, Admin: usr.Admin || listed}, nil
}
