package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
)

var (
	_ repository.UnitRepository           = (*UnitRepo)(nil)
	_ repository.ConversionRuleRepository = (*ConversionRuleRepo)(nil)
)

// UnitRepo catálogo de unidades sobre PostgreSQL.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador.
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

// List devuelve todas las unidades.
func (r *UnitRepo) List(ctx context.Context) ([]*entity.Unit, error) {
	query := `
		SELECT id, name, abbreviation, dimension, COALESCE(base_unit_id, ''), factor, is_base
		FROM units ORDER BY dimension, factor`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var list []*entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Abbreviation, &u.Dimension, &u.BaseUnitID, &u.Factor, &u.IsBase); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// ConversionRuleRepo conversiones propias de cada material.
type ConversionRuleRepo struct {
	q Querier
}

// NewConversionRuleRepository construye el adaptador.
func NewConversionRuleRepository(q Querier) *ConversionRuleRepo {
	return &ConversionRuleRepo{q: q}
}

// Create inserta la regla; el constraint único (material, etiqueta) se traduce a ErrDuplicateConversion.
func (r *ConversionRuleRepo) Create(ctx context.Context, rule *entity.ConversionRule) error {
	query := `
		INSERT INTO conversion_rules (id, material_id, unit_label, multiplier, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, rule.ID, rule.MaterialID, rule.UnitLabel, rule.Multiplier, rule.Note, rule.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateConversion
		}
		return fmt.Errorf("create conversion rule: %w", err)
	}
	return nil
}

// GetByMaterialAndLabel busca por etiqueta ya normalizada; (nil, nil) si no existe.
func (r *ConversionRuleRepo) GetByMaterialAndLabel(ctx context.Context, materialID, label string) (*entity.ConversionRule, error) {
	query := `
		SELECT id, material_id, unit_label, multiplier, note, created_at
		FROM conversion_rules WHERE material_id = $1 AND unit_label = $2`
	var c entity.ConversionRule
	err := r.q.QueryRow(ctx, query, materialID, label).Scan(&c.ID, &c.MaterialID, &c.UnitLabel, &c.Multiplier, &c.Note, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversion rule: %w", err)
	}
	return &c, nil
}

// ListByMaterial lista las reglas de un material por etiqueta.
func (r *ConversionRuleRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.ConversionRule, error) {
	query := `
		SELECT id, material_id, unit_label, multiplier, note, created_at
		FROM conversion_rules WHERE material_id = $1 ORDER BY unit_label`
	rows, err := r.q.Query(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("list conversion rules: %w", err)
	}
	defer rows.Close()
	var list []*entity.ConversionRule
	for rows.Next() {
		var c entity.ConversionRule
		if err := rows.Scan(&c.ID, &c.MaterialID, &c.UnitLabel, &c.Multiplier, &c.Note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion rule: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
