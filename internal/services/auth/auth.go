// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/password"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

var (
	// ErrPasswordMismatch возвращается, если два введенных пароля не совпадают.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidCredentials возвращается при неверной паре email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenPair — пара access и refresh токенов.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя. Пароль вводится дважды и должен совпасть.
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, password1, password2 string) (string, error) {
	if password1 != password2 {
		return "", ErrPasswordMismatch
	}
	user, err := models.NewUser(email, firstName, lastName)
	if err != nil {
		return "", err
	}
	hashed, err := password.GetHash(password1)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hashed
	return s.users.RegisterUser(ctx, *user)
}

// RegisterSuperuser создает пользователя со служебными правами. Оба флага
// обязаны быть установлены.
func (s *AuthService) RegisterSuperuser(ctx context.Context, email, firstName, lastName, rawPassword string, isStaff, isSuperuser bool) (string, error) {
	user, err := models.NewSuperuser(email, firstName, lastName, isStaff, isSuperuser)
	if err != nil {
		return "", err
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hashed
	return s.users.RegisterUser(ctx, *user)
}

// Login проверяет пароль пользователя и генерирует пару access/refresh токенов.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*TokenPair, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh проверяет refresh токен и выдает новую пару токенов.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// ValidateToken проверяет JWT и возвращает данные пользователя из claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.User{
		UID:       claims.UserUID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.jwtMaker.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
