// Package recipe traduce ventas de menú a consumo de materiales (receta / BOM).
package recipe

import (
	"context"
	"fmt"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/measure"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// UnitResolver tabla de conversiones con el catálogo de unidades cargado una vez por receta.
type UnitResolver interface {
	Registry(ctx context.Context) (*measure.Registry, error)
	ResolveFor(ctx context.Context, reg *measure.Registry, material *entity.Material, unitLabel string) (decimal.Decimal, error)
}

// Resolver calcula los materiales que consume un menú.
type Resolver struct {
	menuItems repository.MenuItemRepository
	recipes   repository.RecipeRepository
	materials repository.MaterialRepository
	units     UnitResolver
}

// NewResolver construye el resolvedor de recetas.
func NewResolver(
	menuItems repository.MenuItemRepository,
	recipes repository.RecipeRepository,
	materials repository.MaterialRepository,
	units UnitResolver,
) *Resolver {
	return &Resolver{menuItems: menuItems, recipes: recipes, materials: materials, units: units}
}

// Availability resultado de consultar si un menú puede prepararse.
type Availability struct {
	MenuItemID   string                       `json:"menu_item_id"`
	Quantity     int                          `json:"quantity"`
	Available    bool                         `json:"available"`
	Requirements []entity.MaterialRequirement `json:"requirements"`
	Shortages    []domain.Shortage            `json:"shortages"`
}

// MenuItem obtiene un menú; ErrMenuItemNotFound si no existe.
func (r *Resolver) MenuItem(ctx context.Context, menuItemID string) (*entity.MenuItem, error) {
	item, err := r.menuItems.GetByID(ctx, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("obtener menú: %w", err)
	}
	if item == nil {
		return nil, domain.ErrMenuItemNotFound
	}
	return item, nil
}

// RequiredMaterials materiales (en unidad base) que consume vender quantitySold unidades del menú.
// Una receta vacía no consume nada.
func (r *Resolver) RequiredMaterials(ctx context.Context, menuItemID string, quantitySold int) ([]entity.MaterialRequirement, error) {
	if quantitySold <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	item, err := r.MenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	return r.RequiredFor(ctx, item, quantitySold)
}

// RequiredFor igual que RequiredMaterials con el menú ya cargado.
func (r *Resolver) RequiredFor(ctx context.Context, item *entity.MenuItem, quantitySold int) ([]entity.MaterialRequirement, error) {
	lines, err := r.recipes.ListByMenuItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener receta: %w", err)
	}
	if len(lines) == 0 {
		return []entity.MaterialRequirement{}, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}
	materials, err := r.materials.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("obtener materiales: %w", err)
	}
	reg, err := r.units.Registry(ctx)
	if err != nil {
		return nil, err
	}

	sold := decimal.NewFromInt(int64(quantitySold))
	reqs := make([]entity.MaterialRequirement, 0, len(lines))
	for _, l := range lines {
		material, ok := materials[l.MaterialID]
		if !ok {
			return nil, fmt.Errorf("receta de %s: %w", item.Name, domain.ErrMaterialNotFound)
		}
		factor, err := r.units.ResolveFor(ctx, reg, material, l.UnitLabel)
		if err != nil {
			return nil, fmt.Errorf("receta de %s: %w", item.Name, err)
		}
		reqs = append(reqs, entity.MaterialRequirement{
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Quantity:     l.Quantity.Mul(sold).Mul(factor),
			Unit:         conversion.UnitLabel(reg, material.BaseUnitID),
		})
	}
	return Aggregate(reqs), nil
}

// Aggregate suma los requerimientos por material conservando el orden de primera aparición
// y redondea cada total a la escala del libro.
func Aggregate(lists ...[]entity.MaterialRequirement) []entity.MaterialRequirement {
	index := map[string]int{}
	out := []entity.MaterialRequirement{}
	for _, list := range lists {
		for _, req := range list {
			if i, ok := index[req.MaterialID]; ok {
				out[i].Quantity = out[i].Quantity.Add(req.Quantity)
				continue
			}
			index[req.MaterialID] = len(out)
			out = append(out, req)
		}
	}
	for i := range out {
		out[i].Quantity = measure.RoundQuantity(out[i].Quantity)
	}
	return out
}

// CheckAvailability indica si hay materiales para preparar quantity unidades del menú.
func (r *Resolver) CheckAvailability(ctx context.Context, menuItemID string, quantity int) (*Availability, error) {
	reqs, err := r.RequiredMaterials(ctx, menuItemID, quantity)
	if err != nil {
		return nil, err
	}
	res := &Availability{
		MenuItemID:   menuItemID,
		Quantity:     quantity,
		Requirements: reqs,
		Shortages:    []domain.Shortage{},
	}
	if len(reqs) > 0 {
		ids := make([]string, 0, len(reqs))
		for _, req := range reqs {
			ids = append(ids, req.MaterialID)
		}
		materials, err := r.materials.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("obtener materiales: %w", err)
		}
		shortages, err := stock.Compare(reqs, materials)
		if err != nil {
			return nil, err
		}
		if shortages != nil {
			res.Shortages = shortages
		}
	}
	res.Available = len(res.Shortages) == 0
	return res, nil
}
