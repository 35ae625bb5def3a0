package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, base_unit_id, on_hand, unit_price, active, notes, created_at, updated_at`

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.Name, &m.BaseUnitID, &m.OnHand, &m.UnitPrice, &m.Active, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID obtiene un material; (nil, nil) si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// GetByIDs obtiene varios materiales indexados por ID (los inexistentes no aparecen).
func (r *MaterialRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Material, error) {
	out := make(map[string]*entity.Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get materials: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

// List lista materiales por nombre.
func (r *MaterialRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE ($1 = FALSE OR active) ORDER BY name`
	rows, err := r.q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE).
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material for update: %w", err)
	}
	return m, nil
}

// UpdateOnHand fija la existencia del material.
func (r *MaterialRepo) UpdateOnHand(ctx context.Context, id string, onHand decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE materials SET on_hand = $2, updated_at = now() WHERE id = $1`, id, onHand)
	if err != nil {
		return fmt.Errorf("update on_hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// UpdateUnitPrice fija el costo por unidad base.
func (r *MaterialRepo) UpdateUnitPrice(ctx context.Context, id string, unitPrice decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE materials SET unit_price = $2, updated_at = now() WHERE id = $1`, id, unitPrice)
	if err != nil {
		return fmt.Errorf("update unit_price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}
