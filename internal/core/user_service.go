package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// User is an account that can sign in to the procurement backend.
type User struct {
	ID            int       `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contact_number"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ErrInvalidCredentials is returned by Authenticate for a bad username or
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService manages accounts and credential checks.
type UserService interface {
	// Authenticate verifies a username/password pair against the stored
	// bcrypt hash and returns the account on success. Inactive accounts
	// fail with ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	// Create registers a new account with a bcrypt-hashed password.
	// Admin only.
	Create(ctx context.Context, actor Actor, username, password, role, name string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetUsers(ctx context.Context) ([]User, error)
	// SetActive enables or disables an account. Admin only.
	SetActive(ctx context.Context, actor Actor, userID int, active bool) error
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = `id, username, password_hash, role,
	COALESCE(name, ''), COALESCE(email, ''), COALESCE(contact_number, ''),
	is_active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role,
		&u.Name, &u.Email, &u.ContactNumber, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, actor Actor, username, password, role, name string) (*User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &IntegrityError{Detail: "username and password are required"}
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, &IntegrityError{Detail: fmt.Sprintf("unknown role %q", role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		username, string(hash), role, name))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("username %q already taken", username)}
		}
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &IntegrityError{Detail: fmt.Sprintf("user %d not found", id)}
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *userService) GetUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, nil
}

func (s *userService) SetActive(ctx context.Context, actor Actor, userID int, active bool) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_active = $2 WHERE id = $1", userID, active)
	if err != nil {
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return &IntegrityError{Detail: fmt.Sprintf("user %d not found", userID)}
	}
	return nil
}
