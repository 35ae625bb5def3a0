package repository

import (
	"context"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// MenuItemRepository puerto de lectura de menús (mantenidos por el CRUD externo).
type MenuItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.MenuItem, error)
}

// RecipeRepository puerto de lectura de las líneas de receta de un menú.
type RecipeRepository interface {
	ListByMenuItem(ctx context.Context, menuItemID string) ([]*entity.RecipeLine, error)
}
