// Package auth registers users, checks credentials and issues JWTs.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	domainaudit "github.com/matiasleandrokruk/groundedgrowth/internal/domain/audit"
	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/validation"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/sqlite"
	pkgauth "github.com/matiasleandrokruk/groundedgrowth/pkg/auth"
	"github.com/matiasleandrokruk/groundedgrowth/pkg/uuid"
)

// ErrInvalidCredentials is returned by Login when email or password is incorrect.
// A single error covers both cases so callers cannot probe which emails exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by Register when the email is already taken.
var ErrEmailAlreadyExists = errors.New("email already registered")

// ErrUserNotFound is returned by GetUser.
var ErrUserNotFound = errors.New("user not found")

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the public view of an account; the password hash never leaves the package.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterInput holds the data needed to create a user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Result is returned after successful Register or Login.
type Result struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type auditLogger interface {
	LogWithDetails(
		ctx context.Context,
		actorID string,
		actorType domainaudit.ActorType,
		action string,
		entityType *string,
		entityID *string,
		details *domainaudit.EventDetails,
		outcome domainaudit.Outcome,
	) error
}

// Service is backed by SQLite.
type Service struct {
	db     *sql.DB
	tokens *pkgauth.TokenManager
	audit  auditLogger
	now    func() time.Time
}

// NewService creates a Service. audit may be nil.
func NewService(db *sql.DB, tokens *pkgauth.TokenManager, audit auditLogger) *Service {
	return &Service{db: db, tokens: tokens, audit: audit, now: time.Now}
}

// Register validates input, stores the user with a bcrypt hash and returns a JWT.
// Emails are stored lower-cased.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if err := validateRegister(email, input.Password, name); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := User{ID: uuid.NewV7().String(), Email: email, Name: name, CreatedAt: now, UpdatedAt: now}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_account (id, email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, hash, user.Name, sqlite.FormatTime(now), sqlite.FormatTime(now))
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			s.logAuth(ctx, "unknown", domainaudit.ActionRegister, domainaudit.OutcomeDenied, "email_taken")
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		s.logAuth(ctx, user.ID, domainaudit.ActionRegister, domainaudit.OutcomeError, "jwt_generation_failed")
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.logAuth(ctx, user.ID, domainaudit.ActionRegister, domainaudit.OutcomeSuccess, "")
	return &Result{Token: token, User: user}, nil
}

// Login verifies credentials and returns a JWT. Every failure, including a
// missing account, is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, validation.New("Email y contraseña son requeridos")
	}

	var (
		user      User
		hash      string
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM user_account
		WHERE email = ?
	`, email).Scan(&user.ID, &user.Email, &user.Name, &hash, &createdAt, &updatedAt)
	if err != nil {
		s.logAuth(ctx, "unknown", domainaudit.ActionLogin, domainaudit.OutcomeDenied, "user_not_found_or_query_error")
		return nil, ErrInvalidCredentials
	}

	if !pkgauth.VerifyPassword(hash, input.Password) {
		s.logAuth(ctx, user.ID, domainaudit.ActionLogin, domainaudit.OutcomeDenied, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if err := parseTimes(&user, createdAt, updatedAt); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		s.logAuth(ctx, user.ID, domainaudit.ActionLogin, domainaudit.OutcomeError, "jwt_generation_failed")
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.logAuth(ctx, user.ID, domainaudit.ActionLogin, domainaudit.OutcomeSuccess, "")
	return &Result{Token: token, User: user}, nil
}

// GetUser loads the profile of an existing user.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at, updated_at FROM user_account WHERE id = ?
	`, id).Scan(&user.ID, &user.Email, &user.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := parseTimes(&user, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(email, password, name string) error {
	if email == "" || password == "" || name == "" {
		return validation.New("Email, contraseña y nombre son requeridos")
	}
	if !emailPattern.MatchString(email) {
		return validation.New("Email inválido")
	}
	if problems := passwordProblems(password); len(problems) > 0 {
		return validation.New(strings.Join(problems, ", "))
	}
	if len([]rune(name)) < 2 {
		return validation.New("El nombre debe tener al menos 2 caracteres")
	}
	return nil
}

func passwordProblems(password string) []string {
	var problems []string
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLength))
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		problems = append(problems, "La contraseña debe contener al menos una letra")
	}
	if !hasDigit {
		problems = append(problems, "La contraseña debe contener al menos un número")
	}
	return problems
}

func parseTimes(u *User, createdAt, updatedAt string) error {
	var err error
	if u.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = sqlite.ParseTime(updatedAt); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

func (s *Service) logAuth(ctx context.Context, userID, action string, outcome domainaudit.Outcome, reason string) {
	if s.audit == nil {
		return
	}
	var details *domainaudit.EventDetails
	if reason != "" {
		details = &domainaudit.EventDetails{Metadata: map[string]any{"reason": reason}}
	}
	_ = s.audit.LogWithDetails(ctx, userID, domainaudit.ActorTypeUser, action, nil, nil, details, outcome)
}
