package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// UserRepo provides access to the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, password, userType, nomeCompleto, cpf, dataNascimento, IFNULL(currentToken,''), lastLogin, createdAt, updatedAt"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var userType string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &userType, &u.FullName,
		&u.CPF, &u.BirthDate, &u.CurrentToken, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.UserType = model.ParseRole(userType)
	return u, nil
}

// Create inserts a fully prepared user record.  The password must already be
// hashed by the caller.  A duplicate email or (cpf, userType) pair surfaces
// as ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password, userType, nomeCompleto, cpf, dataNascimento, createdAt, updatedAt)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, string(u.UserType), u.FullName, u.CPF, u.BirthDate,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email))
}

// GetByCPFAndType fetches a user by the (cpf, userType) unique pair.
func (r *UserRepo) GetByCPFAndType(ctx context.Context, cpf string, userType model.Role) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE cpf = ? AND userType = ? LIMIT 1",
		cpf, string(userType)))
}

// GetByEmailAndBirthDate is the second password-reset verification path.
func (r *UserRepo) GetByEmailAndBirthDate(ctx context.Context, email, birthDate string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? AND dataNascimento = ? LIMIT 1",
		email, birthDate))
}

// RoleOf resolves the role of a user id.  Missing users resolve to
// RoleUnknown with no error: visibility falls back to the public branch.
func (r *UserRepo) RoleOf(ctx context.Context, id string) (model.Role, error) {
	var userType string
	err := r.DB.QueryRowContext(ctx,
		"SELECT userType FROM users WHERE id = ? LIMIT 1", id).Scan(&userType)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoleUnknown, nil
	}
	if err != nil {
		return model.RoleUnknown, err
	}
	return model.ParseRole(userType), nil
}

// NameOf returns the full name of a user, or ErrNotFound.
func (r *UserRepo) NameOf(ctx context.Context, id string) (string, error) {
	var name string
	err := r.DB.QueryRowContext(ctx,
		"SELECT nomeCompleto FROM users WHERE id = ? LIMIT 1", id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

// SaveSession persists the freshly issued token and login time.  This is
// advisory "last seen" state only; tokens stay valid at the protocol level
// until they expire.
func (r *UserRepo) SaveSession(ctx context.Context, id, token string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET currentToken = ?, lastLogin = ?, updatedAt = ? WHERE id = ?",
		token, now.UTC(), now.UTC(), id)
	return err
}

// UpdatePassword overwrites the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password = ?, updatedAt = ? WHERE id = ?",
		passwordHash, now.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
