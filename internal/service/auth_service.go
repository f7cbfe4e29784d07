package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/jwt"
	"go-stock-ledger/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Register(req *RegisterRequest) (*LoginResponse, error)
	Login(login, password string) (*LoginResponse, error)
	Logout(userID uuid.UUID) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(req *PasswordResetConfirmRequest) error
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email,max=255"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type PasswordResetConfirmRequest struct {
	UID                string `json:"uid" validate:"required"`
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

// ResetLinkConfig describes where password reset links point to
type ResetLinkConfig struct {
	BaseURL  string
	SiteName string
}

type authService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	mailer   mailer.Sender
	links    ResetLinkConfig
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, sender mailer.Sender, links ResetLinkConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		mailer:   sender,
		links:    links,
	}
}

// EncodeUID renders a user id as the identity fragment of a reset link
func EncodeUID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

func DecodeUID(uid string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(string(raw))
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// Single session: every login invalidates older tokens
	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(user.ID, version); err != nil {
		return nil, errors.New("failed to update session")
	}
	user.TokenVersion = version

	token, err := jwt.GenerateToken(user.ID, user.Username, user.Email, roleCode, user.GetPrivilegeCodes(), version)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Register(req *RegisterRequest) (*LoginResponse, error) {
	// 1. Validate request
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Check uniqueness
	if taken, err := userExists(s.userRepo.FindByUsername(req.Username)); err != nil {
		return nil, err
	} else if taken {
		return nil, &DuplicateKeyError{Field: "username", Message: "A user with that username already exists."}
	}
	if taken, err := userExists(s.userRepo.FindByEmail(req.Email)); err != nil {
		return nil, err
	} else if taken {
		return nil, &DuplicateKeyError{Field: "email", Message: "A user with that email already exists."}
	}

	// 3. Create user with the member role
	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		IsActive:  true,
	}
	if role, err := s.roleRepo.FindByCode(model.RoleMember); err == nil {
		user.RoleID = &role.ID
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, translateStoreError(err, "User", "username")
	}

	// 4. Log the new user in
	created, err := s.userRepo.FindByID(user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(created)
}

func (s *authService) Login(login, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByLogin(strings.TrimSpace(login))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Logout(userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) resetEmail(user *model.User, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You're receiving this email because you requested a password reset for your user account at %s.\n\n", s.links.SiteName)
	b.WriteString("Please go to the following page and choose a new password:\n\n")
	b.WriteString(link + "\n\n")
	fmt.Fprintf(&b, "Your username, in case you've forgotten: %s\n\n", user.Username)
	fmt.Fprintf(&b, "Thanks for using our site!\n\nThe %s team\n", s.links.SiteName)
	return b.String()
}

// RequestPasswordReset mails a reset link. Unknown addresses succeed silently.
// userExists turns a lookup result into a yes/no answer. Only a missing row means "no".
func userExists(user *model.User, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	req := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: strings.TrimSpace(email)}
	if err := validate(&req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(translateStoreError(err, "User", ""), ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := jwt.GenerateResetToken(user.ID, user.Password)
	if err != nil {
		return errors.New("failed to generate reset token")
	}
	link := fmt.Sprintf("%s/password_reset/%s/%s/", strings.TrimRight(s.links.BaseURL, "/"), EncodeUID(user.ID), token)
	subject := "Password reset on " + s.links.SiteName

	if err := s.mailer.Send(ctx, user.Email, subject, s.resetEmail(user, link)); err != nil {
		log.Printf("password reset mail to %s failed: %v", user.Email, err)
		if errors.Is(err, mailer.ErrBadHeader) {
			return &ExternalServiceError{Service: "mail", Message: "Invalid header found.", Err: err}
		}
		return &ExternalServiceError{Service: "mail", Message: "The password reset email could not be sent.", Err: err}
	}
	return nil
}

// ConfirmPasswordReset sets a new password. The token stops working once the password changes.
func (s *authService) ConfirmPasswordReset(req *PasswordResetConfirmRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	invalid := newValidationError("token", "The password reset link was invalid, possibly because it has already been used.")
	userID, err := DecodeUID(req.UID)
	if err != nil {
		return invalid
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return invalid
	}
	if err := jwt.ValidateResetToken(req.Token, user.ID, user.Password); err != nil {
		return invalid
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return errors.New("failed to hash password")
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password, uuid.New().String())
}
