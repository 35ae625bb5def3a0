// Package stock implementa el libro de materiales: cada cambio de existencias queda como un
// asiento inmutable y la existencia del material se actualiza en la misma unidad de trabajo.
package stock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/inventory"
	"github.com/jhoicas/resto-pos-api/internal/domain/measure"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Ledger caso de uso del libro de stock.
type Ledger struct {
	txRunner  TxRunner
	materials repository.MaterialRepository
	ledger    repository.StockLedgerRepository
	units     UnitResolver
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger construye el caso de uso.
func NewLedger(
	txRunner TxRunner,
	materials repository.MaterialRepository,
	ledger repository.StockLedgerRepository,
	units UnitResolver,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		txRunner:  txRunner,
		materials: materials,
		ledger:    ledger,
		units:     units,
		log:       log,
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (pruebas).
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Movement cambio de existencias expresado en la unidad base del material.
type Movement struct {
	MaterialID string
	Amount     decimal.Decimal
	Unit       string // abreviatura de la unidad base, solo para mensajes
	ActorID    string
	Reference  string
	Note       string
}

// AdjustInput ajuste manual (reposición o baja).
// UnitCost (solo entradas) es el costo por unidad base; recalcula el costo promedio del material.
type AdjustInput struct {
	MaterialID string
	Direction  string
	Amount     decimal.Decimal
	UnitLabel  string
	UnitCost   *decimal.Decimal
	ActorID    string
	Note       string
}

// Reconciliation resultado de recorrer el libro de un material.
type Reconciliation struct {
	MaterialID     string          `json:"material_id"`
	OnHand         decimal.Decimal `json:"on_hand"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	LedgerBalance  decimal.Decimal `json:"ledger_balance"`
	Entries        int             `json:"entries"`
	Consistent     bool            `json:"consistent"`
	BrokenEntryID  string          `json:"broken_entry_id,omitempty"`
	Problem        string          `json:"problem,omitempty"`
}

// IncreaseInTx suma existencias usando los repositorios de la unidad de trabajo del caller.
func (l *Ledger) IncreaseInTx(ctx context.Context, repos repository.TxRepos, m Movement) (*entity.StockLedgerEntry, error) {
	return l.apply(ctx, repos, entity.DirectionIn, m)
}

// DecreaseInTx descuenta existencias; ErrInsufficientStock (con el faltante) si quedaría negativo.
func (l *Ledger) DecreaseInTx(ctx context.Context, repos repository.TxRepos, m Movement) (*entity.StockLedgerEntry, error) {
	return l.apply(ctx, repos, entity.DirectionOut, m)
}

// apply bloquea el material (SELECT FOR UPDATE), calcula antes/después, actualiza la existencia
// y agrega el asiento. Si algo falla el caller hace Rollback.
func (l *Ledger) apply(ctx context.Context, repos repository.TxRepos, direction string, m Movement) (*entity.StockLedgerEntry, error) {
	amount := measure.RoundQuantity(m.Amount)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	material, err := repos.Materials.GetForUpdate(ctx, m.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("bloquear material: %w", err)
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}

	before := material.OnHand
	after := before.Add(amount)
	if direction == entity.DirectionOut {
		after = before.Sub(amount)
		if after.IsNegative() {
			return nil, &domain.ShortageError{Shortages: []domain.Shortage{{
				MaterialID:   material.ID,
				MaterialName: material.Name,
				Required:     amount,
				Available:    before,
				Unit:         m.Unit,
			}}}
		}
	}

	entry := &entity.StockLedgerEntry{
		ID:             uuid.New().String(),
		MaterialID:     material.ID,
		ActorID:        m.ActorID,
		Direction:      direction,
		Quantity:       amount,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reference:      m.Reference,
		Note:           m.Note,
		CreatedAt:      l.now(),
	}
	if !entry.Balanced() {
		return nil, fmt.Errorf("%s: %w", material.Name, domain.ErrLedgerMismatch)
	}
	if err := repos.Materials.UpdateOnHand(ctx, material.ID, after); err != nil {
		return nil, fmt.Errorf("actualizar existencia: %w", err)
	}
	if err := repos.Ledger.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("registrar asiento: %w", err)
	}
	return entry, nil
}

// Increase suma existencias en su propia unidad de trabajo.
func (l *Ledger) Increase(ctx context.Context, m Movement) (*entity.StockLedgerEntry, error) {
	return l.runSingle(ctx, entity.DirectionIn, m)
}

// Decrease descuenta existencias en su propia unidad de trabajo.
func (l *Ledger) Decrease(ctx context.Context, m Movement) (*entity.StockLedgerEntry, error) {
	return l.runSingle(ctx, entity.DirectionOut, m)
}

func (l *Ledger) runSingle(ctx context.Context, direction string, m Movement) (*entity.StockLedgerEntry, error) {
	if !measure.RoundQuantity(m.Amount).IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	var entry *entity.StockLedgerEntry
	err := l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		entry, err = l.apply(ctx, repos, direction, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CheckInTx bloquea los materiales en orden ascendente de ID (evita interbloqueos entre ventas
// concurrentes) y devuelve todos los faltantes, en el orden de reqs.
func (l *Ledger) CheckInTx(ctx context.Context, repos repository.TxRepos, reqs []entity.MaterialRequirement) ([]domain.Shortage, error) {
	ids := make([]string, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		if !seen[r.MaterialID] {
			seen[r.MaterialID] = true
			ids = append(ids, r.MaterialID)
		}
	}
	sort.Strings(ids)

	locked := make(map[string]*entity.Material, len(ids))
	for _, id := range ids {
		m, err := repos.Materials.GetForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("bloquear material: %w", err)
		}
		if m == nil {
			return nil, domain.ErrMaterialNotFound
		}
		locked[id] = m
	}
	return Compare(reqs, locked)
}

// Check calcula los faltantes sin bloquear (verificación previa y consultas de disponibilidad).
func (l *Ledger) Check(ctx context.Context, reqs []entity.MaterialRequirement) ([]domain.Shortage, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.MaterialID)
	}
	materials, err := l.materials.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("obtener materiales: %w", err)
	}
	return Compare(reqs, materials)
}

// Compare contrasta requerimientos contra existencias; ErrMaterialNotFound si falta algún material.
func Compare(reqs []entity.MaterialRequirement, materials map[string]*entity.Material) ([]domain.Shortage, error) {
	var shortages []domain.Shortage
	for _, r := range reqs {
		m, ok := materials[r.MaterialID]
		if !ok || m == nil {
			return nil, fmt.Errorf("%s: %w", r.MaterialID, domain.ErrMaterialNotFound)
		}
		if m.OnHand.LessThan(r.Quantity) {
			name := r.MaterialName
			if name == "" {
				name = m.Name
			}
			shortages = append(shortages, domain.Shortage{
				MaterialID:   m.ID,
				MaterialName: name,
				Required:     r.Quantity,
				Available:    m.OnHand,
				Unit:         r.Unit,
			})
		}
	}
	return shortages, nil
}

// AdjustStock registra una reposición (in) o una baja (out) manual. Si UnitLabel viene informado
// la cantidad se convierte a la unidad base del material.
func (l *Ledger) AdjustStock(ctx context.Context, in AdjustInput) (*entity.StockLedgerEntry, error) {
	verr := &domain.ValidationError{}
	if in.MaterialID == "" {
		verr.Add("material_id", "requerido")
	}
	if !in.Amount.IsPositive() {
		verr.Add("amount", "debe ser mayor que cero")
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			verr.Add("unit_cost", "no puede ser negativo")
		} else if in.Direction == entity.DirectionOut {
			verr.Add("unit_cost", "solo aplica a entradas")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if in.Direction != entity.DirectionIn && in.Direction != entity.DirectionOut {
		return nil, domain.ErrInvalidStockDirection
	}

	material, err := l.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("obtener material: %w", err)
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}

	factor := decimal.NewFromInt(1)
	if in.UnitLabel != "" {
		factor, err = l.units.Resolve(ctx, material.ID, in.UnitLabel)
		if err != nil {
			return nil, err
		}
	}
	qty := measure.RoundQuantity(in.Amount.Mul(factor))
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := l.now()
	m := Movement{
		MaterialID: material.ID,
		Amount:     qty,
		Unit:       l.units.BaseUnitLabel(ctx, material.BaseUnitID),
		ActorID:    in.ActorID,
		Reference:  fmt.Sprintf("ADJ-%s-%s", now.Format("20060102"), uuid.New().String()[:8]),
		Note:       in.Note,
	}
	var entry *entity.StockLedgerEntry
	if in.UnitCost == nil {
		entry, err = l.runSingle(ctx, in.Direction, m)
	} else {
		entry, err = l.restock(ctx, m, *in.UnitCost)
	}
	if err != nil {
		l.log.Warn().Err(err).
			Str("material_id", material.ID).
			Str("direction", in.Direction).
			Str("amount", qty.String()).
			Msg("ajuste de stock rechazado")
		return nil, err
	}
	l.log.Info().
		Str("material_id", material.ID).
		Str("direction", entry.Direction).
		Str("quantity", entry.Quantity.String()).
		Str("on_hand", entry.QuantityAfter.String()).
		Str("reference", entry.Reference).
		Str("actor_id", entry.ActorID).
		Msg("ajuste de stock registrado")
	return entry, nil
}

// restock registra la entrada y recalcula el costo promedio ponderado en la misma unidad de trabajo.
func (l *Ledger) restock(ctx context.Context, m Movement, unitCost decimal.Decimal) (*entity.StockLedgerEntry, error) {
	var entry *entity.StockLedgerEntry
	err := l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		entry, err = l.apply(ctx, repos, entity.DirectionIn, m)
		if err != nil {
			return err
		}
		// La fila ya está bloqueada por apply.
		material, err := repos.Materials.GetByID(ctx, m.MaterialID)
		if err != nil {
			return fmt.Errorf("obtener material: %w", err)
		}
		cost := inventory.WeightedAverageCost(entry.QuantityBefore, material.UnitPrice, entry.Quantity, unitCost)
		if err := repos.Materials.UpdateUnitPrice(ctx, m.MaterialID, cost); err != nil {
			return fmt.Errorf("actualizar costo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetStockHistory lista los asientos de un material, más recientes primero.
func (l *Ledger) GetStockHistory(ctx context.Context, materialID string, filter repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	if filter.Direction != "" && filter.Direction != entity.DirectionIn && filter.Direction != entity.DirectionOut {
		return nil, domain.ErrInvalidStockDirection
	}
	if filter.Offset < 0 {
		return nil, domain.NewValidationError("offset", "no puede ser negativo")
	}
	material, err := l.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("obtener material: %w", err)
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultHistoryLimit
	case filter.Limit > maxHistoryLimit:
		filter.Limit = maxHistoryLimit
	}
	entries, err := l.ledger.ListByMaterial(ctx, materialID, filter)
	if err != nil {
		return nil, fmt.Errorf("listar asientos: %w", err)
	}
	if entries == nil {
		entries = []*entity.StockLedgerEntry{}
	}
	return entries, nil
}

// Reconcile recorre el libro del material en orden cronológico y verifica que cada asiento
// cuadre, que encadene con el anterior y que el último saldo coincida con la existencia.
// Existencia y asientos se leen con la fila del material bloqueada.
func (l *Ledger) Reconcile(ctx context.Context, materialID string) (*Reconciliation, error) {
	var (
		material *entity.Material
		entries  []*entity.StockLedgerEntry
	)
	err := l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		material, err = repos.Materials.GetForUpdate(ctx, materialID)
		if err != nil {
			return fmt.Errorf("bloquear material: %w", err)
		}
		if material == nil {
			return domain.ErrMaterialNotFound
		}
		entries, err = repos.Ledger.ListChronological(ctx, materialID)
		if err != nil {
			return fmt.Errorf("listar asientos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		MaterialID:     material.ID,
		OnHand:         material.OnHand,
		OpeningBalance: material.OnHand,
		LedgerBalance:  material.OnHand,
		Entries:        len(entries),
		Consistent:     true,
	}
	if len(entries) == 0 {
		return rec, nil
	}
	rec.OpeningBalance = entries[0].QuantityBefore
	for i, e := range entries {
		if !e.Balanced() {
			rec.Consistent, rec.BrokenEntryID = false, e.ID
			rec.Problem = "el asiento no cuadra"
			break
		}
		if i > 0 && !e.QuantityBefore.Equal(entries[i-1].QuantityAfter) {
			rec.Consistent, rec.BrokenEntryID = false, e.ID
			rec.Problem = "el saldo inicial no coincide con el asiento anterior"
			break
		}
	}
	rec.LedgerBalance = entries[len(entries)-1].QuantityAfter
	if rec.Consistent && !rec.LedgerBalance.Equal(material.OnHand) {
		rec.Consistent = false
		rec.BrokenEntryID = entries[len(entries)-1].ID
		rec.Problem = "el saldo del libro no coincide con la existencia"
	}
	if !rec.Consistent {
		l.log.Error().
			Str("material_id", material.ID).
			Str("entry_id", rec.BrokenEntryID).
			Str("problem", rec.Problem).
			Msg("libro de stock inconsistente")
	}
	return rec, nil
}

// ListMaterials lista los materiales.
func (l *Ledger) ListMaterials(ctx context.Context, activeOnly bool) ([]*entity.Material, error) {
	list, err := l.materials.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listar materiales: %w", err)
	}
	return list, nil
}

// GetMaterial obtiene un material por ID.
func (l *Ledger) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	m, err := l.materials.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener material: %w", err)
	}
	if m == nil {
		return nil, domain.ErrMaterialNotFound
	}
	return m, nil
}
