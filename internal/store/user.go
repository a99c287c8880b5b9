package store

import (
	"database/sql"
	"fmt"

	"github.com/moimapp/moim/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var nickname sql.NullString

	err := scanner.Scan(&u.ID, &u.Username, &nickname, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	if nickname.Valid {
		u.Nickname = &nickname.String
	}
	return &u, nil
}

const userCols = `id, username, nickname, created_at`

func (s *UserStore) Create(username, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// GetCredentials returns the user and stored password hash for a username,
// or (nil, "") when the user does not exist.
func (s *UserStore) GetCredentials(username string) (*model.User, string, error) {
	var u model.User
	var nickname sql.NullString
	var hash string

	err := s.db.QueryRow(
		`SELECT id, username, nickname, created_at, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &nickname, &u.CreatedAt, &hash)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get credentials: %w", err)
	}
	if nickname.Valid {
		u.Nickname = &nickname.String
	}
	return &u, hash, nil
}

// UpdateNickname sets or clears the user's display nickname.
func (s *UserStore) UpdateNickname(id int64, nickname *string) (*model.User, error) {
	_, err := s.db.Exec(`UPDATE users SET nickname = ? WHERE id = ?`, nickname, id)
	if err != nil {
		return nil, fmt.Errorf("update nickname: %w", err)
	}
	return s.GetByID(id)
}
