package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"imovelBack/internal/models"
)

type VisitorRepository struct {
	DB *sql.DB
}

// UpsertVisitor creates or refreshes a visitor keyed by email. On
// conflict the name, phone and last-contact timestamp are updated and
// the existing row id is returned (LAST_INSERT_ID trick, MySQL).
func (r *VisitorRepository) UpsertVisitor(ctx context.Context, visitor models.Visitor) (models.Visitor, error) {
	query := `
        INSERT INTO visitors (name, email, phone, created_at, last_contact_at)
        VALUES (?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            id = LAST_INSERT_ID(id),
            name = VALUES(name),
            phone = COALESCE(VALUES(phone), phone),
            last_contact_at = VALUES(last_contact_at)
    `
	now := time.Now()
	visitor.CreatedAt = now
	visitor.LastContactAt = now

	result, err := r.DB.ExecContext(ctx, query,
		visitor.Name, visitor.Email, visitor.Phone, visitor.CreatedAt, visitor.LastContactAt,
	)
	if err != nil {
		return models.Visitor{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Visitor{}, err
	}
	visitor.ID = int(id)
	return visitor, nil
}

func (r *VisitorRepository) GetVisitorByID(ctx context.Context, id int) (models.Visitor, error) {
	var visitor models.Visitor
	query := `SELECT id, name, email, phone, created_at, last_contact_at FROM visitors WHERE id = ?`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&visitor.ID, &visitor.Name, &visitor.Email, &visitor.Phone,
		&visitor.CreatedAt, &visitor.LastContactAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Visitor{}, models.ErrVisitorNotFound
	}
	if err != nil {
		return models.Visitor{}, err
	}
	return visitor, nil
}

func (r *VisitorRepository) GetVisitorByEmail(ctx context.Context, email string) (models.Visitor, error) {
	var visitor models.Visitor
	query := `SELECT id, name, email, phone, created_at, last_contact_at FROM visitors WHERE email = ?`
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&visitor.ID, &visitor.Name, &visitor.Email, &visitor.Phone,
		&visitor.CreatedAt, &visitor.LastContactAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Visitor{}, models.ErrVisitorNotFound
	}
	if err != nil {
		return models.Visitor{}, err
	}
	return visitor, nil
}
