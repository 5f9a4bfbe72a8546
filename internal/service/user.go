package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/contact-scraper/internal/dto"
	"github.com/octobees/contact-scraper/internal/entity"
	"github.com/octobees/contact-scraper/internal/repository"
)

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrInvalidRole   = errors.New("role must be admin or user")
)

// UserService encapsulates administrative operations for users.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

func validRole(role string) bool {
	return role == entity.RoleAdmin || role == entity.RoleUser
}

// ListUsers returns all users as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.NewUserResponse(&users[i]))
	}
	return responses, nil
}

// CreateUser creates a new user with the supplied role, defaulting to user.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if email == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	if role == "" {
		role = entity.RoleUser
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, email, string(hashed), role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, repository.ErrEmailDuplicate
		}
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateUser mutates selected user fields.
func (s *UserService) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	var email *string
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		if trimmed == "" {
			return nil, errors.New("email cannot be empty")
		}
		email = &trimmed
	}

	var role *string
	if req.Role != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Role))
		if !validRole(normalized) {
			return nil, ErrInvalidRole
		}
		role = &normalized
	}

	var passwordHash *string
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, errors.New("password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		passwordHash = &pwd
	}

	user, err := s.repo.Update(ctx, userID, email, passwordHash, role)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, repository.ErrUserNotFound
		case errors.Is(err, repository.ErrEmailDuplicate):
			return nil, repository.ErrEmailDuplicate
		}
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// DeleteUser removes a user by id. Their scrape history goes with them.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidUserID
	}
	return s.repo.Delete(ctx, userID)
}
