package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
)

var (
	_ repository.MenuItemRepository = (*MenuItemRepo)(nil)
	_ repository.RecipeRepository   = (*RecipeRepo)(nil)
)

// MenuItemRepo lectura de menús.
type MenuItemRepo struct {
	q Querier
}

// NewMenuItemRepository construye el adaptador.
func NewMenuItemRepository(q Querier) *MenuItemRepo {
	return &MenuItemRepo{q: q}
}

// GetByID obtiene un menú; (nil, nil) si no existe.
func (r *MenuItemRepo) GetByID(ctx context.Context, id string) (*entity.MenuItem, error) {
	query := `SELECT id, name, price, active, created_at, updated_at FROM menu_items WHERE id = $1`
	var m entity.MenuItem
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Price, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return &m, nil
}

// RecipeRepo lectura de recetas.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador.
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// ListByMenuItem devuelve las líneas de receta del menú (vacío si no tiene receta).
func (r *RecipeRepo) ListByMenuItem(ctx context.Context, menuItemID string) ([]*entity.RecipeLine, error) {
	query := `
		SELECT id, menu_item_id, material_id, quantity, unit_label
		FROM recipe_lines WHERE menu_item_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.RecipeLine
	for rows.Next() {
		var l entity.RecipeLine
		if err := rows.Scan(&l.ID, &l.MenuItemID, &l.MaterialID, &l.Quantity, &l.UnitLabel); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
