package service

import (
	"errors"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	UpdateUserRole(userID uuid.UUID, req *UpdateRoleRequest) (*model.UserResponse, error)
	DeleteUser(userID uuid.UUID, actorID uuid.UUID) error
}

type UpdateRoleRequest struct {
	RoleID uint `json:"role_id" validate:"required"`
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, translateStoreError(err, "User", "")
	}
	response := user.ToResponse()
	return &response, nil
}

// UpdateUserRole moves a user to another role. The user's session is rotated so
// the next token carries the new privileges.
func (s *userService) UpdateUserRole(userID uuid.UUID, req *UpdateRoleRequest) (*model.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, translateStoreError(err, "User", "")
	}
	if _, err := s.roleRepo.FindByID(req.RoleID); err != nil {
		if errors.Is(translateStoreError(err, "Role", ""), ErrNotFound) {
			return nil, newValidationError("role_id", "Select a valid choice. That choice is not one of the available choices.")
		}
		return nil, err
	}

	if err := s.userRepo.UpdateRole(user.ID, req.RoleID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		return nil, err
	}

	return s.GetUserByID(user.ID)
}

// DeleteUser removes an account with all its stock entries. Users cannot delete themselves.
func (s *userService) DeleteUser(userID uuid.UUID, actorID uuid.UUID) error {
	if userID == actorID {
		return ErrForbidden
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return translateStoreError(err, "User", "")
	}
	return nil
}
