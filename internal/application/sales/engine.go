// Package sales implementa el motor de ventas: registrar una venta descuenta los materiales de
// sus recetas y anularla los restituye, siempre en una única unidad de trabajo.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/resto-pos-api/internal/application/recipe"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultCodePrefix = "TRX"
	defaultListLimit  = 50
	maxListLimit      = 500
)

// Config parámetros del motor de ventas.
type Config struct {
	CodePrefix string         // prefijo del código de venta (TRX)
	Location   *time.Location // zona horaria del día contable
}

// Engine caso de uso de ventas.
type Engine struct {
	txRunner     stock.TxRunner
	ledger       StockLedger
	recipes      RecipeResolver
	transactions repository.TransactionRepository
	recorder     Recorder
	log          zerolog.Logger
	prefix       string
	loc          *time.Location
	now          func() time.Time
}

// NewEngine construye el motor. recorder puede ser nil.
func NewEngine(
	txRunner stock.TxRunner,
	ledger StockLedger,
	recipes RecipeResolver,
	transactions repository.TransactionRepository,
	recorder Recorder,
	log zerolog.Logger,
	cfg Config,
) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	prefix := cfg.CodePrefix
	if prefix == "" {
		prefix = defaultCodePrefix
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		txRunner:     txRunner,
		ledger:       ledger,
		recipes:      recipes,
		transactions: transactions,
		recorder:     recorder,
		log:          log,
		prefix:       prefix,
		loc:          loc,
		now:          time.Now,
	}
}

// SetClock reemplaza el reloj (pruebas).
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Location zona horaria en la que se cuentan los días de venta.
func (e *Engine) Location() *time.Location { return e.loc }

// SaleItemInput línea solicitada de una venta.
type SaleItemInput struct {
	MenuItemID string
	Quantity   int
}

// CreateSaleInput datos de una venta.
type CreateSaleInput struct {
	ActorID  string
	Tendered decimal.Decimal
	Note     string
	Items    []SaleItemInput
}

// SaleFilter filtros del listado de ventas. Day se interpreta en la zona del motor.
type SaleFilter struct {
	Day    *time.Time
	Status string
	Limit  int
	Offset int
}

// pricedLine línea validada con el menú resuelto.
type pricedLine struct {
	item     *entity.MenuItem
	quantity int
	subtotal decimal.Decimal
}

// CreateSale registra una venta. Orden de verificación: entrada, menús, stock y pago.
// Nada se persiste si alguna verificación falla; la persistencia, el consecutivo del día y el
// descuento de materiales ocurren en una sola unidad de trabajo.
func (e *Engine) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.Transaction, error) {
	tx, err := e.createSale(ctx, in)
	if err != nil {
		e.recorder.SaleRejected(domain.Code(err))
		ev := e.log.Warn()
		if !isBusinessError(err) {
			ev = e.log.Error()
		}
		ev.Err(err).Str("actor_id", in.ActorID).Str("code", domain.Code(err)).Msg("venta rechazada")
		return nil, err
	}
	e.recorder.SaleCreated(tx.Total, len(tx.Items))
	e.log.Info().
		Str("transaction_id", tx.ID).
		Str("code", tx.Code).
		Str("actor_id", tx.ActorID).
		Str("total", tx.Total.StringFixed(2)).
		Int("items", len(tx.Items)).
		Msg("venta registrada")
	return tx, nil
}

func (e *Engine) createSale(ctx context.Context, in CreateSaleInput) (*entity.Transaction, error) {
	if err := validateSale(in); err != nil {
		return nil, err
	}

	// ── 1. Menús y consumo de materiales ─────────────────────────────────────
	lines := make([]pricedLine, 0, len(in.Items))
	perLine := make([][]entity.MaterialRequirement, 0, len(in.Items))
	for _, it := range in.Items {
		item, err := e.recipes.MenuItem(ctx, it.MenuItemID)
		if err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, fmt.Errorf("%s: %w", item.Name, domain.ErrMenuItemUnavailable)
		}
		reqs, err := e.recipes.RequiredFor(ctx, item, it.Quantity)
		if err != nil {
			return nil, err
		}
		perLine = append(perLine, reqs)
		lines = append(lines, pricedLine{
			item:     item,
			quantity: it.Quantity,
			subtotal: item.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
		})
	}
	reqs := recipe.Aggregate(perLine...)

	// ── 2. Disponibilidad (verificación previa, sin bloqueos) ────────────────
	shortages, err := e.ledger.Check(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if len(shortages) > 0 {
		return nil, &domain.ShortageError{Shortages: shortages}
	}

	// ── 3. Total y pago ──────────────────────────────────────────────────────
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.subtotal)
	}
	if in.Tendered.LessThan(total) {
		return nil, &domain.PaymentError{Total: total, Tendered: in.Tendered}
	}

	// ── 4. Unidad de trabajo: consecutivo, venta, líneas y descuentos ───────
	now := e.now().In(e.loc)
	tx := &entity.Transaction{
		ID:        uuid.New().String(),
		ActorID:   in.ActorID,
		Total:     total,
		Tendered:  in.Tendered,
		Change:    in.Tendered.Sub(total),
		Status:    entity.TransactionStatusCompleted,
		Note:      in.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		seq, err := repos.Sequences.Next(ctx, dayOf(now))
		if err != nil {
			return fmt.Errorf("consecutivo: %w", err)
		}
		tx.Code = e.code(now, seq)
		tx.Items = tx.Items[:0]

		if err := repos.Transactions.Create(ctx, tx); err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		for _, l := range lines {
			item := entity.TransactionItem{
				ID:            uuid.New().String(),
				TransactionID: tx.ID,
				MenuItemID:    l.item.ID,
				MenuItemName:  l.item.Name,
				Quantity:      l.quantity,
				UnitPrice:     l.item.Price,
				Subtotal:      l.subtotal,
			}
			if err := repos.Transactions.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("crear línea de venta: %w", err)
			}
			tx.Items = append(tx.Items, item)
		}

		// Re-verificación con las filas bloqueadas: otra venta pudo consumir stock entre tanto.
		shortages, err := e.ledger.CheckInTx(ctx, repos, reqs)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			return &domain.ShortageError{Shortages: shortages}
		}
		for _, r := range reqs {
			if r.Quantity.IsZero() {
				continue
			}
			_, err := e.ledger.DecreaseInTx(ctx, repos, stock.Movement{
				MaterialID: r.MaterialID,
				Amount:     r.Quantity,
				Unit:       r.Unit,
				ActorID:    in.ActorID,
				Reference:  tx.Code,
				Note:       "venta " + tx.Code,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

const (
	// MoneyScale decimales de los montos (NUMERIC(18,2)).
	MoneyScale = 2
	// MaxItemQuantity tope de unidades por línea de venta.
	MaxItemQuantity = 100000
)

func validateSale(in CreateSaleInput) error {
	verr := &domain.ValidationError{}
	if in.ActorID == "" {
		verr.Add("actor_id", "requerido")
	}
	if len(in.Items) == 0 {
		verr.Add("items", "debe incluir al menos una línea")
	}
	for i, it := range in.Items {
		if it.MenuItemID == "" {
			verr.Add(fmt.Sprintf("items[%d].menu_item_id", i), "requerido")
		}
		switch {
		case it.Quantity <= 0:
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		case it.Quantity > MaxItemQuantity:
			verr.Add(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("no puede superar %d", MaxItemQuantity))
		}
	}
	switch {
	case in.Tendered.IsNegative():
		verr.Add("tendered", "no puede ser negativo")
	case !in.Tendered.Equal(in.Tendered.Round(MoneyScale)):
		verr.Add("tendered", fmt.Sprintf("máximo %d decimales", MoneyScale))
	}
	return verr.OrNil()
}

// CancelSale anula una venta completada y restituye exactamente lo que descontó: refleja los
// asientos de salida registrados con el código de la venta (no vuelve a leer la receta).
func (e *Engine) CancelSale(ctx context.Context, transactionID, actorID string) (*entity.Transaction, error) {
	if transactionID == "" {
		return nil, domain.NewValidationError("transaction_id", "requerido")
	}
	var cancelled *entity.Transaction
	err := e.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		tx, err := repos.Transactions.GetForUpdate(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("bloquear venta: %w", err)
		}
		if tx == nil {
			return domain.ErrTransactionNotFound
		}
		if tx.Cancelled() {
			return domain.ErrAlreadyCancelled
		}

		entries, err := repos.Ledger.ListByReference(ctx, tx.Code)
		if err != nil {
			return fmt.Errorf("asientos de la venta: %w", err)
		}
		for _, entry := range entries {
			if entry.Direction != entity.DirectionOut {
				continue
			}
			_, err := e.ledger.IncreaseInTx(ctx, repos, stock.Movement{
				MaterialID: entry.MaterialID,
				Amount:     entry.Quantity,
				ActorID:    actorID,
				Reference:  tx.Code,
				Note:       "anulación venta " + tx.Code,
			})
			if err != nil {
				return err
			}
		}

		at := e.now().In(e.loc)
		if err := repos.Transactions.MarkCancelled(ctx, tx.ID, actorID, at); err != nil {
			return fmt.Errorf("anular venta: %w", err)
		}
		tx.Status = entity.TransactionStatusCancelled
		tx.CancelledAt = &at
		tx.CancelledBy = actorID
		tx.UpdatedAt = at
		cancelled = tx
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).
			Str("transaction_id", transactionID).
			Str("actor_id", actorID).
			Msg("anulación rechazada")
		return nil, err
	}
	e.recorder.SaleCancelled()
	e.log.Info().
		Str("transaction_id", cancelled.ID).
		Str("code", cancelled.Code).
		Str("actor_id", actorID).
		Msg("venta anulada")
	return cancelled, nil
}

// GetSale obtiene una venta con sus líneas.
func (e *Engine) GetSale(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := e.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if tx == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// ListSales lista ventas, más recientes primero.
func (e *Engine) ListSales(ctx context.Context, f SaleFilter) ([]*entity.Transaction, error) {
	if f.Status != "" && f.Status != entity.TransactionStatusCompleted && f.Status != entity.TransactionStatusCancelled {
		return nil, domain.NewValidationError("status", "debe ser completed o cancelled")
	}
	if f.Offset < 0 {
		return nil, domain.NewValidationError("offset", "no puede ser negativo")
	}
	filter := repository.TransactionFilter{Status: f.Status, Limit: f.Limit, Offset: f.Offset}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	if f.Day != nil {
		from := dayOf(f.Day.In(e.loc))
		to := from.AddDate(0, 0, 1)
		filter.From, filter.To = &from, &to
	}
	list, err := e.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	if list == nil {
		list = []*entity.Transaction{}
	}
	return list, nil
}

// code arma el código legible de la venta: <prefijo><aaaammdd><consecutivo de 4 dígitos>.
func (e *Engine) code(day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%04d", e.prefix, day.Format("20060102"), seq)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isBusinessError distingue rechazos esperados (validación, faltantes, pago) de fallas internas.
func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}
