package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

const ledgerColumns = `id, material_id, actor_id, direction, quantity, quantity_before, quantity_after, reference, note, created_at`

// StockLedgerRepo libro de stock sobre PostgreSQL; solo inserción. El orden de creación lo da seq.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

// Create inserta un asiento.
func (r *StockLedgerRepo) Create(ctx context.Context, e *entity.StockLedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.MaterialID, e.ActorID, e.Direction, e.Quantity, e.QuantityBefore, e.QuantityAfter,
		e.Reference, e.Note, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// ListByMaterial asientos del material, más recientes primero, con filtros opcionales.
func (r *StockLedgerRepo) ListByMaterial(ctx context.Context, materialID string, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	conds := []string{"material_id = $1"}
	args := []any{materialID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Direction != "" {
		add("direction = $%d", f.Direction)
	}
	if f.Reference != "" {
		add("reference = $%d", f.Reference)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.list(ctx, query, args...)
}

// ListChronological todos los asientos del material en orden de creación.
func (r *StockLedgerRepo) ListChronological(ctx context.Context, materialID string) ([]*entity.StockLedgerEntry, error) {
	return r.list(ctx, `SELECT `+ledgerColumns+` FROM stock_ledger WHERE material_id = $1 ORDER BY seq`, materialID)
}

// ListByReference asientos de una referencia (código de venta o ajuste) en orden de creación.
func (r *StockLedgerRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockLedgerEntry, error) {
	return r.list(ctx, `SELECT `+ledgerColumns+` FROM stock_ledger WHERE reference = $1 ORDER BY seq`, reference)
}

func (r *StockLedgerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockLedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.StockLedgerEntry, error) {
	var e entity.StockLedgerEntry
	err := row.Scan(&e.ID, &e.MaterialID, &e.ActorID, &e.Direction, &e.Quantity,
		&e.QuantityBefore, &e.QuantityAfter, &e.Reference, &e.Note, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
