package repository

import (
	"context"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
)

// UnitRepository puerto de lectura del catálogo de unidades.
type UnitRepository interface {
	List(ctx context.Context) ([]*entity.Unit, error)
}

// ConversionRuleRepository define el puerto de persistencia para conversiones por material.
type ConversionRuleRepository interface {
	// Create devuelve domain.ErrDuplicateConversion si ya existe (material, etiqueta).
	Create(ctx context.Context, rule *entity.ConversionRule) error
	// GetByMaterialAndLabel compara la etiqueta ya normalizada; (nil, nil) si no existe.
	GetByMaterialAndLabel(ctx context.Context, materialID, label string) (*entity.ConversionRule, error)
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.ConversionRule, error)
}
