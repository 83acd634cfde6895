package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/insurance-crm/crm"
)

const userColumns = `id, name, email, phone, role, location, bio, status, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *crm.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = crm.AgentID(uuid.NewString())
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, u.Role, u.Location, u.Bio, u.Status,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
	return err
}

func (s *Store) GetUser(ctx context.Context, id crm.AgentID) (*crm.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUserLocked(ctx, id)
}

// getUserLocked assumes the caller holds the store lock.
func (s *Store) getUserLocked(ctx context.Context, id crm.AgentID) (*crm.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*crm.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (s *Store) UpdateUser(ctx context.Context, u *crm.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			name = ?, email = ?, phone = ?, role = ?, location = ?, bio = ?, status = ?,
			updated_at = ?
		WHERE id = ?`,
		u.Name, u.Email, u.Phone, u.Role, u.Location, u.Bio, u.Status,
		formatTime(u.UpdatedAt), u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*crm.User, error) {
	var (
		u                    crm.User
		createdAt, updatedAt string
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Location, &u.Bio, &u.Status,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}
