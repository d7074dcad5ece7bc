package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/ChristopherDeLaRosa/academia/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	StudentID    null.String `db:"student_id"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) toCore() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Role:         user.Role(r.Role),
		StudentID:    r.StudentID.String,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM app_user WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		inQuery, inArgs, err := sqlx.In(` AND id NOT IN (?)`, ids)
		if err != nil {
			return trapExecErr(err, "building uniqueness query")
		}
		query += inQuery
		args = append(args, inArgs...)
	}
	query += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return trapExecErr(err, "checking user uniqueness")
	}
	if exists {
		// callers refine this via a username-only probe when needed
		var usernameTaken bool
		if err := repo.db.GetContext(ctx, &usernameTaken,
			`SELECT EXISTS (SELECT 1 FROM app_user WHERE username = $1)`, username); err != nil {
			return trapExecErr(err, "checking username uniqueness")
		}
		if usernameTaken {
			return user.ErrUsernameExists
		}
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO app_user (id, name, username, email, role, student_id, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.Role.String(),
		null.NewString(usr.StudentID, usr.StudentID != ""), usr.IsActive, usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt)
	if err != nil {
		return user.User{}, trapExecErr(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, name, username, email, role, student_id, is_active, password_hash, created_at, updated_at, last_login
		 FROM app_user WHERE id = $1`, id)
	if err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, "finding user by ID")
	}
	return row.toCore(), nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, name, username, email, role, student_id, is_active, password_hash, created_at, updated_at, last_login
		 FROM app_user WHERE username = $1 OR email = $1`, username)
	if err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, "finding user")
	}
	return row.toCore(), nil
}

func (repo *userRepository) UpdateLastLogin(ctx context.Context, id string, lastLogin time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE app_user SET last_login = $2 WHERE id = $1`, id, lastLogin)
	if err != nil {
		return trapExecErr(err, "updating lastLogin")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.ErrNotFound
	}
	return nil
}
