package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/utils"
)

type recipeRepository struct {
	db *sql.DB
}

func (r *recipeRepository) Save(ctx context.Context, recipe *entities.Recipe) error {
	lines, err := json.Marshal(recipe.Lines())
	if err != nil {
		return fmt.Errorf("failed to encode recipe lines: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, title, instructions, lines, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			instructions = excluded.instructions,
			lines = excluded.lines,
			updated_at = excluded.updated_at`,
		recipe.ID().String(), recipe.Title(), recipe.Instructions(), string(lines),
		utils.SortKey(recipe.CreatedAt()), utils.SortKey(recipe.UpdatedAt()))
	if err != nil {
		return pkgerrors.NewDatabaseError("save recipe", err)
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, instructions, lines, created_at, updated_at FROM recipes WHERE id = ?`, id.String())
	recipe, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("recipe")
	}
	return recipe, err
}

func (r *recipeRepository) List(ctx context.Context) ([]*entities.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, instructions, lines, created_at, updated_at FROM recipes ORDER BY created_at, rowid`)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list recipes", err)
	}
	defer rows.Close()

	var out []*entities.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list recipes", err)
	}
	return out, nil
}

func (r *recipeRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	return deleteByID(ctx, r.db, `DELETE FROM recipes WHERE id = ?`, "recipe", id.String())
}

func (r *recipeRepository) DeleteAll(ctx context.Context) (int, error) {
	return deleteAll(ctx, r.db, `DELETE FROM recipes`, "recipes")
}

func scanRecipe(s scanner) (*entities.Recipe, error) {
	var id, title, instructions, rawLines, created, updated string
	if err := s.Scan(&id, &title, &instructions, &rawLines, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, pkgerrors.NewDatabaseError("read recipe", err)
	}

	var lines []valueobjects.IngredientLine
	if err := json.Unmarshal([]byte(rawLines), &lines); err != nil {
		return nil, fmt.Errorf("failed to decode lines of recipe %s: %w", id, err)
	}
	createdAt, err := utils.ParseSortKey(created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	updatedAt, err := utils.ParseSortKey(updated)
	if err != nil {
		updatedAt = createdAt
	}
	return entities.ReconstructRecipe(valueobjects.ID(id), title, instructions, lines, createdAt, updatedAt), nil
}

type pairingRepository struct {
	db *sql.DB
}

func (r *pairingRepository) Save(ctx context.Context, pairing *entities.Pairing) error {
	ids, err := json.Marshal(pairing.RecipeIDs())
	if err != nil {
		return fmt.Errorf("failed to encode recipe ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pairings (id, name, recipe_ids, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, recipe_ids = excluded.recipe_ids`,
		pairing.ID().String(), pairing.Name(), string(ids), utils.SortKey(pairing.CreatedAt()))
	if err != nil {
		return pkgerrors.NewDatabaseError("save pairing", err)
	}
	return nil
}

func (r *pairingRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.Pairing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, recipe_ids, created_at FROM pairings WHERE id = ?`, id.String())
	p, err := scanPairing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("pairing")
	}
	return p, err
}

func (r *pairingRepository) List(ctx context.Context) ([]*entities.Pairing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, recipe_ids, created_at FROM pairings ORDER BY created_at, rowid`)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list pairings", err)
	}
	defer rows.Close()

	var out []*entities.Pairing
	for rows.Next() {
		p, err := scanPairing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("list pairings", err)
	}
	return out, nil
}

func (r *pairingRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	return deleteByID(ctx, r.db, `DELETE FROM pairings WHERE id = ?`, "pairing", id.String())
}

func (r *pairingRepository) DeleteAll(ctx context.Context) (int, error) {
	return deleteAll(ctx, r.db, `DELETE FROM pairings`, "pairings")
}

func scanPairing(s scanner) (*entities.Pairing, error) {
	var id, name, rawIDs, created string
	if err := s.Scan(&id, &name, &rawIDs, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, pkgerrors.NewDatabaseError("read pairing", err)
	}
	var ids []valueobjects.ID
	if err := json.Unmarshal([]byte(rawIDs), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode recipe ids of pairing %s: %w", id, err)
	}
	createdAt, err := utils.ParseSortKey(created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	return entities.ReconstructPairing(valueobjects.ID(id), name, ids, createdAt), nil
}
