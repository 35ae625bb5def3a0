package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
)

var (
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.SequenceRepository    = (*SequenceRepo)(nil)
)

const transactionColumns = `id, code, actor_id, total, tendered, change_amount, status, note,
	created_at, updated_at, cancelled_at, cancelled_by`

// TransactionRepo ventas y sus líneas sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create inserta la cabecera. Un código repetido (otra venta lo tomó) es una modificación concurrente.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Code, t.ActorID, t.Total, t.Tendered, t.Change, t.Status, t.Note,
		t.CreatedAt, t.UpdatedAt, t.CancelledAt, t.CancelledBy,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintOf(err) != "transactions_pkey" {
			return fmt.Errorf("código %s: %w", t.Code, domain.ErrConcurrentModification)
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de venta.
func (r *TransactionRepo) CreateItem(ctx context.Context, it *entity.TransactionItem) error {
	query := `
		INSERT INTO transaction_items (id, transaction_id, menu_item_id, menu_item_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, it.ID, it.TransactionID, it.MenuItemID, it.MenuItemName, it.Quantity, it.UnitPrice, it.Subtotal)
	if err != nil {
		return fmt.Errorf("create transaction item: %w", err)
	}
	return nil
}

// GetByID carga cabecera y líneas; (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// GetForUpdate carga la venta y bloquea su fila (SELECT FOR UPDATE).
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepo) get(ctx context.Context, query, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	items, err := r.items(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return t, nil
}

// MarkCancelled pasa la venta a cancelled.
func (r *TransactionRepo) MarkCancelled(ctx context.Context, id, actorID string, at time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, cancelled_at = $3, cancelled_by = $4, updated_at = $3
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, entity.TransactionStatusCancelled, at, actorID)
	if err != nil {
		return fmt.Errorf("cancel transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// List lista ventas, más recientes primero; To es exclusivo.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var list []*entity.Transaction
	var ids []string
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		t.Items = items[t.ID]
	}
	return list, nil
}

func (r *TransactionRepo) items(ctx context.Context, ids []string) (map[string][]entity.TransactionItem, error) {
	out := make(map[string][]entity.TransactionItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT id, transaction_id, menu_item_id, menu_item_name, quantity, unit_price, subtotal
		FROM transaction_items WHERE transaction_id = ANY($1) ORDER BY transaction_id, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.MenuItemID, &it.MenuItemName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		out[it.TransactionID] = append(out[it.TransactionID], it)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(&t.ID, &t.Code, &t.ActorID, &t.Total, &t.Tendered, &t.Change, &t.Status, &t.Note,
		&t.CreatedAt, &t.UpdatedAt, &t.CancelledAt, &t.CancelledBy)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SequenceRepo consecutivo diario de ventas. El upsert toma el bloqueo de la fila del día hasta
// el fin de la transacción, así dos ventas concurrentes nunca obtienen el mismo número.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador; debe recibir una tx.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo del día.
func (r *SequenceRepo) Next(ctx context.Context, day time.Time) (int, error) {
	query := `
		INSERT INTO sales_sequences (day, last_value) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = sales_sequences.last_value + 1
		RETURNING last_value`
	var n int
	if err := r.q.QueryRow(ctx, query, day.Format("2006-01-02")).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sales sequence: %w", err)
	}
	return n, nil
}
