// Package users handles accounts, login and the Admin/Inspector profiles.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/symmetrixs/edaago/internal/models"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/utils"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("User with this email already exists")
	// ErrInvalidCredentials is returned by Login for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrInvalidInput is returned for missing or malformed fields
	ErrInvalidInput = errors.New("invalid input")
)

// RegisterInput is a self-service sign-up
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// CreateUserInput is an account created by an admin with an explicit role
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ProfileUpdate changes the caller's own account. Nil fields are left alone.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// SessionUser is the user block of a login response
type SessionUser struct {
	ID    uint    `json:"id"`
	UUID  string  `json:"uuid"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
	Name  string  `json:"name"`
	Photo *string `json:"photo"`
}

// Session is the result of a successful login
type Session struct {
	AccessToken string      `json:"access_token"`
	User        SessionUser `json:"user"`
}

// Service manages accounts and role profiles
type Service struct {
	store  store.Store
	secret string
}

// NewService creates a users service signing tokens with secret
func NewService(s store.Store, secret string) *Service {
	return &Service{store: s, secret: secret}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
	}
	return email, nil
}

// newUser validates the credentials and builds an unsaved account
func (s *Service) newUser(ctx context.Context, name, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &models.User{
		UserName:     name,
		Email:        email,
		AuthUUID:     uuid.NewString(),
		PasswordHash: hash,
	}, nil
}

// Register creates an account with a default Inspector profile named after the username
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		Name:     in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     models.RoleInspector,
	})
}

// CreateUser creates an account and its role profile in one transaction.
// Any role other than admin gets an Inspector profile.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	u, err := s.newUser(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if in.Role == models.RoleAdmin {
			return tx.CreateAdmin(ctx, &models.Admin{UserID: u.UserID, FullName: in.Name})
		}
		return tx.CreateInspector(ctx, &models.Inspector{UserID: u.UserID, FullName: in.Name})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User %d registered (%s)", u.UserID, u.Email)
	return u, nil
}

// Role resolves the user's role and display name. Admin wins over Inspector.
func (s *Service) Role(ctx context.Context, userID uint) (role, name string, photo *string, err error) {
	if a, err := s.store.GetAdmin(ctx, userID); err == nil {
		return models.RoleAdmin, a.FullName, nil, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", "", nil, err
	}
	if i, err := s.store.GetInspector(ctx, userID); err == nil {
		if i.Photo != "" {
			photo = &i.Photo
		}
		return models.RoleInspector, i.FullName, photo, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", "", nil, err
	}
	return models.RoleUnknown, "User", nil, nil
}

// Login checks the password and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	role, name, photo, err := s.Role(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	token, err := utils.GenerateToken(u, role, s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &Session{
		AccessToken: token,
		User: SessionUser{
			ID:    u.UserID,
			UUID:  u.AuthUUID,
			Email: u.Email,
			Role:  role,
			Name:  name,
			Photo: photo,
		},
	}, nil
}

// Profile returns the account row
func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateProfile applies the update. A new username is copied to the Inspector profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	var u *models.User
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if u, err = tx.GetUser(ctx, userID); err != nil {
			return err
		}
		if in.Email != nil && *in.Email != u.Email {
			email, err := normalizeEmail(*in.Email)
			if err != nil {
				return err
			}
			if other, err := tx.GetUserByEmail(ctx, email); err == nil && other.UserID != userID {
				return ErrEmailTaken
			}
			u.Email = email
		}
		if in.Password != nil {
			if *in.Password == "" {
				return fmt.Errorf("%w: password is required", ErrInvalidInput)
			}
			hash, err := utils.HashPassword(*in.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			u.PasswordHash = hash
		}
		if in.Username != nil {
			u.UserName = *in.Username
		}
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}

		if in.Username == nil {
			return nil
		}
		insp, err := tx.GetInspector(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		insp.FullName = *in.Username
		return tx.SaveInspector(ctx, insp)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns every account with its resolved role
func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		role, name, _, err := s.Role(ctx, u.UserID)
		if err != nil {
			return nil, err
		}
		if role == models.RoleUnknown && u.UserName != "" {
			name = u.UserName
		}
		out = append(out, models.UserSummary{ID: u.UserID, Name: name, Email: u.Email, Role: role})
	}
	return out, nil
}

// DeleteUser removes the account and its profiles. Inspections are kept.
func (s *Service) DeleteUser(ctx context.Context, userID uint) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	log.Printf("🗑️ User %d deleted", userID)
	return nil
}

// --- Admin profiles ---

func (s *Service) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	return s.store.ListAdmins(ctx)
}

func (s *Service) GetAdmin(ctx context.Context, userID uint) (*models.Admin, error) {
	return s.store.GetAdmin(ctx, userID)
}

// CreateAdmin attaches an Admin profile to an existing account
func (s *Service) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if _, err := s.store.GetUser(ctx, a.UserID); err != nil {
		return err
	}
	if _, err := s.store.GetAdmin(ctx, a.UserID); err == nil {
		return store.ErrAlreadyExists
	}
	return s.store.CreateAdmin(ctx, a)
}

func (s *Service) UpdateAdmin(ctx context.Context, userID uint, patch models.ProfilePatch) (*models.Admin, error) {
	a, err := s.store.GetAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	patch.ApplyAdmin(a)
	if err := s.store.SaveAdmin(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// --- Inspector profiles ---

func (s *Service) ListInspectors(ctx context.Context) ([]models.Inspector, error) {
	return s.store.ListInspectors(ctx)
}

func (s *Service) GetInspector(ctx context.Context, userID uint) (*models.Inspector, error) {
	return s.store.GetInspector(ctx, userID)
}

// CreateInspector attaches an Inspector profile to an existing account
func (s *Service) CreateInspector(ctx context.Context, i *models.Inspector) error {
	if _, err := s.store.GetUser(ctx, i.UserID); err != nil {
		return err
	}
	if _, err := s.store.GetInspector(ctx, i.UserID); err == nil {
		return store.ErrAlreadyExists
	}
	return s.store.CreateInspector(ctx, i)
}

func (s *Service) UpdateInspector(ctx context.Context, userID uint, patch models.ProfilePatch) (*models.Inspector, error) {
	i, err := s.store.GetInspector(ctx, userID)
	if err != nil {
		return nil, err
	}
	patch.ApplyInspector(i)
	if err := s.store.SaveInspector(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}
