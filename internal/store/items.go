package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/stvari/internal/model"
)

const itemColumns = `i.id, i.user_id, i.item_name, i.description, i.category, i.subcategory,
	i.origin, i.secondhand, i.gifted, i.private, i.private_photos, i.private_description,
	i.private_origin, i.photo_mime, i.created_at, i.updated_at, u.username`

const itemFrom = `FROM items i JOIN users u ON u.id = i.user_id`

// PhotoURL returns the API path of an item's photo.
func PhotoURL(id string) string {
	return "/api/items/" + id + "/photo"
}

// CreateItem creates a new item owned by userID and returns it with its generated ID.
func CreateItem(ctx context.Context, db *sql.DB, userID int64, item *model.Item) (*model.Item, error) {
	id := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, user_id, item_name, description, category, subcategory, origin,
		                    secondhand, gifted, private, private_photos, private_description, private_origin)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, item.ItemName, item.Description, item.Category, item.Subcategory, item.Origin,
		item.Secondhand, item.Gifted, item.Private, item.PrivatePhotos, item.PrivateDescription, item.PrivateOrigin,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	if err := insertMaterials(ctx, tx, id, item.Materials); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns a non-deleted item by ID.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	items, err := queryItems(ctx, db,
		`SELECT `+itemColumns+` `+itemFrom+` WHERE i.id = ? AND i.deleted_at IS NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListItems returns all non-deleted items of a user, newest first.
// A userID of 0 lists the items of every user.
func ListItems(ctx context.Context, db *sql.DB, userID int64) ([]model.Item, error) {
	var items []model.Item
	var err error

	if userID != 0 {
		items, err = queryItems(ctx, db,
			`SELECT `+itemColumns+` `+itemFrom+`
			 WHERE i.deleted_at IS NULL AND i.user_id = ? ORDER BY i.created_at DESC`, userID)
	} else {
		items, err = queryItems(ctx, db,
			`SELECT `+itemColumns+` `+itemFrom+`
			 WHERE i.deleted_at IS NULL ORDER BY i.created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// ListPublicItems returns the non-private items of every user except excludeUserID,
// for the community gallery. Values are not redacted.
func ListPublicItems(ctx context.Context, db *sql.DB, excludeUserID int64) ([]model.Item, error) {
	items, err := queryItems(ctx, db,
		`SELECT `+itemColumns+` `+itemFrom+`
		 WHERE i.deleted_at IS NULL AND i.private = 0 AND u.deleted_at IS NULL AND i.user_id != ?
		 ORDER BY i.created_at DESC`, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("listing public items: %w", err)
	}
	return items, nil
}

// UpdateItem replaces an item's fields and materials.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET item_name = ?, description = ?, category = ?, subcategory = ?, origin = ?,
		        secondhand = ?, gifted = ?, private = ?, private_photos = ?, private_description = ?,
		        private_origin = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ? AND deleted_at IS NULL`,
		item.ItemName, item.Description, item.Category, item.Subcategory, item.Origin,
		item.Secondhand, item.Gifted, item.Private, item.PrivatePhotos, item.PrivateDescription,
		item.PrivateOrigin, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_materials WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("clearing materials: %w", err)
	}
	if err := insertMaterials(ctx, tx, item.ID, item.Materials); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item update: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemPhoto sets an item's photo data.
func SetItemPhoto(ctx context.Context, db *sql.DB, id string, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var photo []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime, nil
}

func insertMaterials(ctx context.Context, tx *sql.Tx, itemID string, materials []model.Material) error {
	for pos, m := range materials {
		var pct sql.NullInt64
		if m.Percentage != nil {
			pct = sql.NullInt64{Int64: int64(*m.Percentage), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO item_materials (item_id, position, material, percentage) VALUES (?, ?, ?, ?)`,
			itemID, pos, m.Material, pct,
		)
		if err != nil {
			return fmt.Errorf("adding material %s: %w", m.Material, err)
		}
	}
	return nil
}

// queryItems runs an item query and attaches materials. Rows are fully read
// before materials are queried so a single connection is enough.
func queryItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var mime string
		if err := rows.Scan(&item.ID, &item.UserID, &item.ItemName, &item.Description, &item.Category,
			&item.Subcategory, &item.Origin, &item.Secondhand, &item.Gifted, &item.Private,
			&item.PrivatePhotos, &item.PrivateDescription, &item.PrivateOrigin, &mime,
			&item.CreatedAt, &item.UpdatedAt, &item.OwnerName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if mime != "" {
			item.MainPhoto = PhotoURL(item.ID)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := attachMaterials(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

func attachMaterials(ctx context.Context, db *sql.DB, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	index := make(map[string]int, len(items))
	args := make([]any, len(items))
	for i, item := range items {
		index[item.ID] = i
		args[i] = item.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(items)), ",")

	rows, err := db.QueryContext(ctx,
		`SELECT item_id, material, percentage FROM item_materials
		 WHERE item_id IN (`+placeholders+`) ORDER BY item_id, position`, args...,
	)
	if err != nil {
		return fmt.Errorf("listing materials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		var m model.Material
		var pct sql.NullInt64
		if err := rows.Scan(&itemID, &m.Material, &pct); err != nil {
			return fmt.Errorf("scanning material: %w", err)
		}
		if pct.Valid {
			p := int(pct.Int64)
			m.Percentage = &p
		}
		i := index[itemID]
		items[i].Materials = append(items[i].Materials, m)
	}
	return rows.Err()
}
