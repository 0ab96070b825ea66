package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new hashes
var PasswordCost = 12

var (
	userEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetter        = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit         = regexp.MustCompile(`[0-9]`)
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// ErrUserInactive is returned when a deactivated user tries to log in
var ErrUserInactive = shared.NewDomainError("USER_INACTIVE", "This account has been deactivated")

// User is someone who logs in to record collections and payments
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	RoleID       uuid.UUID
	IsActive     bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(name, email, password string, roleID uuid.UUID) (*User, error) {
	errs := shared.ValidationErrors{}
	validateUserName(errs, name)
	validateEmail(errs, email)
	validatePassword(errs, password)
	if roleID == uuid.Nil {
		errs.Add("role_id", "is required")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             normalizeEmail(email),
		PasswordHash:      hash,
		RoleID:            roleID,
		IsActive:          true,
	}, nil
}

// Rename changes the display name
func (u *User) Rename(name string) error {
	errs := shared.ValidationErrors{}
	validateUserName(errs, name)
	if err := errs.Err(); err != nil {
		return err
	}
	u.Name = strings.TrimSpace(name)
	return nil
}

// SetEmail changes the login email
func (u *User) SetEmail(email string) error {
	errs := shared.ValidationErrors{}
	validateEmail(errs, email)
	if err := errs.Err(); err != nil {
		return err
	}
	u.Email = normalizeEmail(email)
	return nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	errs := shared.ValidationErrors{}
	validatePassword(errs, password)
	if err := errs.Err(); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// AssignRole moves the user to another role
func (u *User) AssignRole(roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return shared.NewValidationError("role_id", "is required")
	}
	u.RoleID = roleID
	return nil
}

// Activate allows the user to log in
func (u *User) Activate() {
	u.IsActive = true
}

// Deactivate blocks future logins
func (u *User) Deactivate() {
	u.IsActive = false
}

// VerifyPassword checks password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Authenticate checks the password and whether the account may log in
func (u *User) Authenticate(password string) error {
	if !u.VerifyPassword(password) {
		return ErrInvalidCredentials
	}
	if !u.IsActive {
		return ErrUserInactive
	}
	return nil
}

func validateUserName(errs shared.ValidationErrors, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "is required")
		return
	}
	if len(name) > 100 {
		errs.Add("name", "must not exceed 100 characters")
	}
}

func validateEmail(errs shared.ValidationErrors, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs.Add("email", "is required")
	case len(email) > 200:
		errs.Add("email", "must not exceed 200 characters")
	case !userEmailPattern.MatchString(email):
		errs.Add("email", "must be a valid email address")
	}
}

func validatePassword(errs shared.ValidationErrors, password string) {
	switch {
	case len(password) < 8:
		errs.Add("password", "must be at least 8 characters")
	case len(password) > 72:
		errs.Add("password", "must not exceed 72 characters")
	case !hasLetter.MatchString(password) || !hasDigit.MatchString(password):
		errs.Add("password", "must contain at least one letter and one number")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}
