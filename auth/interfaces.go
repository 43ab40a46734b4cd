package auth

import (
	"context"
	"time"

	"github.com/MaxKorjik/Mafia-Online/domain"
)

type UserRepo interface {
	CreateUser(ctx context.Context, username string, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserById(ctx context.Context, id int64) (domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenManager interface {
	Generate(id int64, now time.Time) (string, error)
	Verify(token string) (int64, error)
}
