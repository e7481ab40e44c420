package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/user"
)

type userRow struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	IsAdmin      bool         `db:"is_admin"`
	IsActive     bool         `db:"is_active"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		IsAdmin:      r.IsAdmin,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time.UTC()
	}
	return usr
}

type userRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB, conf *core.Config) *userRepository {
	return &userRepository{db: db, timeout: conf.Database.Timeout}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}
	if len(exclIDs) == 0 {
		exclIDs = append(exclIDs, "") // keep NOT IN () valid
	}

	query, args, err := sqlx.In(
		`SELECT username, email FROM users WHERE (username = ? OR (email <> '' AND email = ?)) AND id NOT IN (?)`,
		username, email, exclIDs,
	)
	if err != nil {
		return storeErr(err, "building uniqueness query")
	}

	var row struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	err = repo.db.GetContext(ctx, &row, repo.db.Rebind(query), args...)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return storeErr(err, "checking username uniqueness")
	}
	if row.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, username, email, is_admin, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsAdmin, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, storeErr(err, "creating user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

func (repo userRepository) getUser(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var row userRow
	err := repo.db.GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, storeErr(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUsersByID(ctx context.Context, ids []string) ([]user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, storeErr(err, "building users query")
	}

	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, storeErr(err, "getting users")
	}
	return toUsers(rows), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY created_at`); err != nil {
		return nil, storeErr(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	lastLogin := sql.NullTime{Time: usr.LastLogin, Valid: !usr.LastLogin.IsZero()}
	res, err := repo.db.ExecContext(
		ctx,
		`UPDATE users SET name = $2, username = $3, email = $4, is_admin = $5, is_active = $6,
			password_hash = $7, updated_at = $8, last_login = $9
		 WHERE id = $1`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsAdmin, usr.IsActive,
		usr.PasswordHash, usr.UpdatedAt, lastLogin,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, storeErr(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users
}
