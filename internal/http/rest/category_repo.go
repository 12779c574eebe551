package rest

import (
	"context"
	"errors"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/jackc/pgx/v5"
)

func (repo *Repo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := repo.DB.Query(ctx, `SELECT id, title, description FROM category ORDER BY title`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Category, error) {
		var c model.Category
		err := row.Scan(&c.ID, &c.Title, &c.Description)
		return c, err
	})
}

func (repo *Repo) ListSubCategories(ctx context.Context, parentID int64) ([]model.SubCategory, error) {
	query := `
        SELECT id, title, description, parent_category_id
        FROM sub_category
        WHERE ($1::bigint = 0 OR parent_category_id = $1::bigint)
        ORDER BY parent_category_id, title
    `
	rows, err := repo.DB.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSubCategory)
}

func (repo *Repo) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := repo.DB.QueryRow(ctx, `SELECT id, title, description FROM category WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, ErrCategoryNotFound
	}
	return c, err
}

func (repo *Repo) GetSubCategory(ctx context.Context, id int64) (model.SubCategory, error) {
	rows, err := repo.DB.Query(ctx,
		`SELECT id, title, description, parent_category_id FROM sub_category WHERE id = $1`, id)
	if err != nil {
		return model.SubCategory{}, err
	}
	sc, err := pgx.CollectExactlyOneRow(rows, scanSubCategory)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SubCategory{}, ErrSubCategoryNotFound
	}
	return sc, err
}

func scanSubCategory(row pgx.CollectableRow) (model.SubCategory, error) {
	var sc model.SubCategory
	err := row.Scan(&sc.ID, &sc.Title, &sc.Description, &sc.ParentCategoryID)
	return sc, err
}

// SeedCategory inserts a category and its sub categories, skipping any
// that already exist.
func (repo *Repo) SeedCategory(ctx context.Context, c model.Category, subs []model.SubCategory) error {
	return repo.RunInTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
            INSERT INTO category (title, description) VALUES ($1, $2)
            ON CONFLICT (title) DO UPDATE SET description = EXCLUDED.description
            RETURNING id`, c.Title, c.Description).Scan(&id)
		if err != nil {
			return err
		}

		for _, sc := range subs {
			_, err := tx.Exec(ctx, `
                INSERT INTO sub_category (title, description, parent_category_id)
                VALUES ($1, $2, $3)
                ON CONFLICT (parent_category_id, title) DO NOTHING`, sc.Title, sc.Description, id)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
