// Package accounts implements sign-up, login and logout on top of the session store.
package accounts

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/mindcare/internal/session"
	"github.com/wolfman30/mindcare/pkg/logging"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// SignUpRequest is the registration form.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service registers and authenticates users against the directory.
type Service struct {
	store  *session.Store
	cost   int
	logger *logging.Logger
}

// NewService creates an accounts service. cost is the bcrypt cost; values
// outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewService(store *session.Store, cost int, logger *logging.Logger) *Service {
	if store == nil {
		panic("accounts: session store required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, cost: cost, logger: logger}
}

// SignUp validates req, creates the user and logs sess in as that user.
func (s *Service) SignUp(ctx context.Context, sess *session.Session, req SignUpRequest) (*session.User, error) {
	if err := validate(req.Email, req.Password, &req); err != nil {
		return nil, err
	}

	existing, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("accounts: lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("accounts: hash password: %w", err)
	}

	u := session.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.store.Now().UTC(),
	}
	if err := sess.SetCurrent(ctx, u); err != nil {
		return nil, fmt.Errorf("accounts: create user: %w", err)
	}

	s.logger.Info("accounts: user signed up", "session_id", sess.ID(), "user_id", u.ID)
	return &u, nil
}

// Login checks the credentials and logs sess in.
func (s *Service) Login(ctx context.Context, sess *session.Session, req LoginRequest) (*session.User, error) {
	if err := validate(req.Email, req.Password, nil); err != nil {
		return nil, err
	}

	u, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("accounts: lookup email: %w", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn("accounts: login rejected", "session_id", sess.ID())
		return nil, ErrInvalidCredentials
	}

	if err := sess.SetCurrent(ctx, *u); err != nil {
		return nil, fmt.Errorf("accounts: set session: %w", err)
	}
	s.logger.Info("accounts: user logged in", "session_id", sess.ID(), "user_id", u.ID)
	return u, nil
}

// Logout clears the session's login pointer.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("accounts: logout: %w", err)
	}
	return nil
}

// validate checks the shared email/password rules, plus the sign-up-only
// rules when signup is non-nil.
func validate(email, password string, signup *SignUpRequest) error {
	var problems []error
	switch {
	case email == "":
		problems = append(problems, ErrEmailRequired)
	case !emailPattern.MatchString(email):
		problems = append(problems, ErrEmailInvalid)
	}
	switch {
	case password == "":
		problems = append(problems, ErrPasswordRequired)
	case len(password) < minPasswordLength:
		problems = append(problems, ErrPasswordTooShort)
	}
	if signup != nil {
		if signup.Name == "" {
			problems = append(problems, ErrNameRequired)
		}
		if signup.Password != signup.ConfirmPassword {
			problems = append(problems, ErrPasswordMismatch)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
