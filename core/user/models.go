package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ChristopherDeLaRosa/academia/core"
)

// Role is the closed set of recognized caller roles.
// It replaces free-form role strings: parsed once at the boundary,
// compared as values everywhere else.
type Role string

const (
	RoleAdmin    Role = "administrador"
	RoleTeacher  Role = "profesor"
	RoleStudent  Role = "estudiante"
	RoleTreasury Role = "caja"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleTreasury}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole maps a raw string to a Role; ok is false for unrecognized values.
func ParseRole(s string) (Role, bool) {
	role := Role(core.CleanString(s, true /* lower */))
	return role, role.IsValid()
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	StudentID    string    `json:"student_id,omitempty"` // set only for RoleStudent accounts
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// IsStaff reports whether the user may manage rubrics and grades.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeacher
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name      string `json:"name" validate:"required"`
	Username  string `json:"username" validate:"required,min=4"`
	Email     string `json:"email" validate:"required,email"`
	Role      Role   `json:"role" validate:"required,role"`
	StudentID string `json:"student_id"`
	Password  string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Username, nu.Email)
}
