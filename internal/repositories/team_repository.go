package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"imovelBack/internal/models"
)

type TeamRepository struct {
	DB *sql.DB
}

func (r *TeamRepository) CreateTeam(ctx context.Context, team models.Team) (models.Team, error) {
	query := `INSERT INTO teams (name, owner_user_id, created_at) VALUES (?, ?, ?)`
	team.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query, team.Name, team.OwnerUserID, team.CreatedAt)
	if err != nil {
		return models.Team{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Team{}, err
	}
	team.ID = int(id)
	return team, nil
}

func (r *TeamRepository) GetTeamByID(ctx context.Context, id int) (models.Team, error) {
	var team models.Team
	query := `SELECT id, name, owner_user_id, created_at FROM teams WHERE id = ?`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.OwnerUserID, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, models.ErrTeamNotFound
	}
	if err != nil {
		return models.Team{}, err
	}

	members, err := r.getMembers(ctx, team.ID)
	if err != nil {
		return models.Team{}, err
	}
	team.Members = members
	return team, nil
}

func (r *TeamRepository) getMembers(ctx context.Context, teamID int) ([]models.User, error) {
	query := `
        SELECT id, name, phone, email, role, avatar_path, created_at
        FROM users
        WHERE team_id = ?
        ORDER BY name ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Role, &u.AvatarPath, &u.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (r *TeamRepository) DeleteTeam(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE users SET team_id = NULL WHERE team_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE listings SET team_id = NULL WHERE team_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
