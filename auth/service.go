package auth

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"
)

var usernameFormat = regexp.MustCompile("^[a-z0-9_]{3,20}$")

type Service struct {
	userRepo       UserRepo
	passwordHasher PasswordHasher
	tokenManager   TokenManager
}

func NewService(userRepo UserRepo, passwordHasher PasswordHasher, tokenManager TokenManager) *Service {
	return &Service{userRepo, passwordHasher, tokenManager}
}

func (as *Service) Signup(ctx context.Context, username, password string) (string, error) {
	if !usernameFormat.MatchString(username) {
		return "", ErrInvalidUsernameFormat
	}

	if utf8.RuneCountInString(password) < 8 {
		return "", ErrWeakPassword
	}

	if utf8.RuneCountInString(password) > 128 {
		return "", ErrPasswordTooLong
	}

	passwordHash, err := as.passwordHasher.Hash(password)
	if err != nil {
		return "", err
	}

	id, err := as.userRepo.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return "", err
	}

	return as.tokenManager.Generate(id, time.Now())
}

func (as *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := as.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	match, err := as.passwordHasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", ErrIncorrectPassword
	}

	return as.tokenManager.Generate(user.Id, time.Now())
}

// VerifyToken returns the user id if the token is valid, else, it returns an error
func (as *Service) VerifyToken(token string) (int64, error) {
	return as.tokenManager.Verify(token)
}

func (as *Service) GenerateToken(id int64) (string, error) {
	return as.tokenManager.Generate(id, time.Now())
}
