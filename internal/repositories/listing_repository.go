package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"imovelBack/internal/models"
)

type ListingRepository struct {
	DB *sql.DB
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Listing{}, err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO listings (title, description, price, category, latitude, longitude, user_id, team_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	listing.CreatedAt = time.Now()
	result, err := tx.ExecContext(ctx, query,
		listing.Title, listing.Description, listing.Price, string(listing.Category),
		listing.Latitude, listing.Longitude, listing.UserID, listing.TeamID, listing.CreatedAt,
	)
	if err != nil {
		return models.Listing{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Listing{}, err
	}
	listing.ID = int(id)

	if err := insertImages(ctx, tx, listing.ID, listing.Images, 0); err != nil {
		return models.Listing{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, listingID int, images []models.ListingImage, startPosition int) error {
	query := `INSERT INTO listing_images (listing_id, name, path, position) VALUES (?, ?, ?, ?)`
	for i, img := range images {
		if _, err := tx.ExecContext(ctx, query, listingID, img.Name, img.Path, startPosition+i); err != nil {
			return err
		}
	}
	return nil
}

func (r *ListingRepository) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	var listing models.Listing
	query := `
        SELECT l.id, l.title, l.description, l.price, l.category, l.latitude, l.longitude,
               l.user_id, u.name, u.phone, u.avatar_path, l.team_id, l.created_at, l.updated_at
        FROM listings l
        JOIN users u ON u.id = l.user_id
        WHERE l.id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&listing.ID, &listing.Title, &listing.Description, &listing.Price, &listing.Category,
		&listing.Latitude, &listing.Longitude,
		&listing.UserID, &listing.Owner.Name, &listing.Owner.Phone, &listing.Owner.AvatarPath,
		&listing.TeamID, &listing.CreatedAt, &listing.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, models.ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}

	images, err := r.getImages(ctx, listing.ID)
	if err != nil {
		return models.Listing{}, err
	}
	listing.Images = images
	return listing, nil
}

func (r *ListingRepository) getImages(ctx context.Context, listingID int) ([]models.ListingImage, error) {
	query := `SELECT name, path, position FROM listing_images WHERE listing_id = ? ORDER BY position ASC`
	rows, err := r.DB.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.ListingImage{}
	for rows.Next() {
		var img models.ListingImage
		if err := rows.Scan(&img.Name, &img.Path, &img.Position); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// GetListings returns every listing joined with its owner and images.
// Category filtering, search and distance ranking happen in the
// service: the result set is small and the ranking needs the caller's
// coordinate, not the database's ordering.
func (r *ListingRepository) GetListings(ctx context.Context) ([]models.Listing, error) {
	query := `
        SELECT l.id, l.title, l.description, l.price, l.category, l.latitude, l.longitude,
               l.user_id, u.name, u.phone, u.avatar_path, l.team_id, l.created_at, l.updated_at
        FROM listings l
        JOIN users u ON u.id = l.user_id
        ORDER BY l.created_at DESC
    `
	return r.queryListings(ctx, query)
}

func (r *ListingRepository) GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error) {
	query := `
        SELECT l.id, l.title, l.description, l.price, l.category, l.latitude, l.longitude,
               l.user_id, u.name, u.phone, u.avatar_path, l.team_id, l.created_at, l.updated_at
        FROM listings l
        JOIN users u ON u.id = l.user_id
        WHERE l.user_id = ?
        ORDER BY l.created_at DESC
    `
	return r.queryListings(ctx, query, userID)
}

// GetListingsByTeamID returns listings shared with a broker team,
// including the members' own listings.
func (r *ListingRepository) GetListingsByTeamID(ctx context.Context, teamID int) ([]models.Listing, error) {
	query := `
        SELECT l.id, l.title, l.description, l.price, l.category, l.latitude, l.longitude,
               l.user_id, u.name, u.phone, u.avatar_path, l.team_id, l.created_at, l.updated_at
        FROM listings l
        JOIN users u ON u.id = l.user_id
        WHERE l.team_id = ? OR u.team_id = ?
        ORDER BY l.created_at DESC
    `
	return r.queryListings(ctx, query, teamID, teamID)
}

func (r *ListingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Description, &l.Price, &l.Category, &l.Latitude, &l.Longitude,
			&l.UserID, &l.Owner.Name, &l.Owner.Phone, &l.Owner.AvatarPath,
			&l.TeamID, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range listings {
		images, err := r.getImages(ctx, listings[i].ID)
		if err != nil {
			return nil, err
		}
		listings[i].Images = images
	}
	return listings, nil
}

// UpdateListing mutates the listing fields and, depending on
// replaceImages, either swaps the whole image set or appends the new
// ones after the existing positions. Returns the paths of any images
// removed so the caller can clean up object storage.
func (r *ListingRepository) UpdateListing(ctx context.Context, listing models.Listing, replaceImages bool) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	query := `
        UPDATE listings
        SET title = ?, description = ?, price = ?, category = ?, latitude = ?, longitude = ?, team_id = ?, updated_at = ?
        WHERE id = ?
    `
	result, err := tx.ExecContext(ctx, query,
		listing.Title, listing.Description, listing.Price, string(listing.Category),
		listing.Latitude, listing.Longitude, listing.TeamID, now, listing.ID,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings WHERE id = ?`, listing.ID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, models.ErrListingNotFound
		}
	}

	var removed []string
	startPosition := 0
	if replaceImages {
		rows, err := tx.QueryContext(ctx, `SELECT path FROM listing_images WHERE listing_id = ?`, listing.ID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var path string
			if err := rows.Scan(&path); err != nil {
				rows.Close()
				return nil, err
			}
			removed = append(removed, path)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = ?`, listing.ID); err != nil {
			return nil, err
		}
	} else {
		var maxPosition sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM listing_images WHERE listing_id = ?`, listing.ID).Scan(&maxPosition); err != nil {
			return nil, err
		}
		if maxPosition.Valid {
			startPosition = int(maxPosition.Int64) + 1
		}
	}

	if err := insertImages(ctx, tx, listing.ID, listing.Images, startPosition); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return removed, nil
}

// DeleteListing removes the listing and its image rows, returning the
// stored image paths for object-storage cleanup.
func (r *ListingRepository) DeleteListing(ctx context.Context, id int) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT path FROM listing_images WHERE listing_id = ?`, id)
	if err != nil {
		return nil, err
	}
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, err
		}
		paths = append(paths, path)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = ?`, id); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.ErrListingNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return paths, nil
}
