package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/measure"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.MaterialRepository       = (*MaterialRepo)(nil)
	_ repository.UnitRepository           = (*UnitRepo)(nil)
	_ repository.ConversionRuleRepository = (*RuleRepo)(nil)
	_ repository.MenuItemRepository       = (*MenuRepo)(nil)
	_ repository.RecipeRepository         = (*RecipeRepo)(nil)
	_ repository.StockLedgerRepository    = (*LedgerRepo)(nil)
	_ repository.TransactionRepository    = (*TransactionRepo)(nil)
	_ repository.SequenceRepository       = (*SequenceRepo)(nil)
)

// ── Materiales ────────────────────────────────────────────────────────────────

// MaterialRepo implementación en memoria de MaterialRepository.
type MaterialRepo struct {
	s    *Store
	inTx bool
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	defer r.s.guard(r.inTx)()
	m, ok := r.s.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MaterialRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Material, error) {
	defer r.s.guard(r.inTx)()
	out := make(map[string]*entity.Material, len(ids))
	for _, id := range ids {
		if m, ok := r.s.materials[id]; ok {
			out[id] = &m
		}
	}
	return out, nil
}

func (r *MaterialRepo) List(_ context.Context, activeOnly bool) ([]*entity.Material, error) {
	defer r.s.guard(r.inTx)()
	list := make([]*entity.Material, 0, len(r.s.materials))
	for _, m := range r.s.materials {
		if activeOnly && !m.Active {
			continue
		}
		m := m
		list = append(list, &m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// GetForUpdate: dentro de Run el mutex del store ya serializa el acceso.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialRepo) UpdateOnHand(_ context.Context, id string, onHand decimal.Decimal) error {
	defer r.s.guard(r.inTx)()
	m, ok := r.s.materials[id]
	if !ok {
		return domain.ErrMaterialNotFound
	}
	m.OnHand = onHand
	m.UpdatedAt = time.Now()
	r.s.materials[id] = m
	return nil
}

func (r *MaterialRepo) UpdateUnitPrice(_ context.Context, id string, unitPrice decimal.Decimal) error {
	defer r.s.guard(r.inTx)()
	m, ok := r.s.materials[id]
	if !ok {
		return domain.ErrMaterialNotFound
	}
	m.UnitPrice = unitPrice
	m.UpdatedAt = time.Now()
	r.s.materials[id] = m
	return nil
}

// ── Unidades y conversiones ───────────────────────────────────────────────────

// UnitRepo implementación en memoria de UnitRepository.
type UnitRepo struct{ s *Store }

func (r *UnitRepo) List(_ context.Context) ([]*entity.Unit, error) {
	defer r.s.guard(false)()
	list := make([]*entity.Unit, 0, len(r.s.units))
	for _, u := range r.s.units {
		u := u
		list = append(list, &u)
	}
	return list, nil
}

// RuleRepo implementación en memoria de ConversionRuleRepository.
type RuleRepo struct{ s *Store }

func (r *RuleRepo) Create(_ context.Context, rule *entity.ConversionRule) error {
	defer r.s.guard(false)()
	label := measure.NormalizeLabel(rule.UnitLabel)
	for _, existing := range r.s.rules {
		if existing.MaterialID == rule.MaterialID && existing.UnitLabel == label {
			return domain.ErrDuplicateConversion
		}
	}
	rule.UnitLabel = label
	r.s.rules = append(r.s.rules, *rule)
	return nil
}

func (r *RuleRepo) GetByMaterialAndLabel(_ context.Context, materialID, label string) (*entity.ConversionRule, error) {
	defer r.s.guard(false)()
	for _, rule := range r.s.rules {
		if rule.MaterialID == materialID && rule.UnitLabel == label {
			rule := rule
			return &rule, nil
		}
	}
	return nil, nil
}

func (r *RuleRepo) ListByMaterial(_ context.Context, materialID string) ([]*entity.ConversionRule, error) {
	defer r.s.guard(false)()
	var list []*entity.ConversionRule
	for _, rule := range r.s.rules {
		if rule.MaterialID == materialID {
			rule := rule
			list = append(list, &rule)
		}
	}
	return list, nil
}

// ── Menús y recetas ───────────────────────────────────────────────────────────

// MenuRepo implementación en memoria de MenuItemRepository.
type MenuRepo struct{ s *Store }

func (r *MenuRepo) GetByID(_ context.Context, id string) (*entity.MenuItem, error) {
	defer r.s.guard(false)()
	item, ok := r.s.menuItems[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// RecipeRepo implementación en memoria de RecipeRepository.
type RecipeRepo struct{ s *Store }

func (r *RecipeRepo) ListByMenuItem(_ context.Context, menuItemID string) ([]*entity.RecipeLine, error) {
	defer r.s.guard(false)()
	var list []*entity.RecipeLine
	for _, l := range r.s.recipes {
		if l.MenuItemID == menuItemID {
			l := l
			list = append(list, &l)
		}
	}
	return list, nil
}

// ── Libro de stock ────────────────────────────────────────────────────────────

// LedgerRepo implementación en memoria de StockLedgerRepository (solo inserción).
type LedgerRepo struct {
	s    *Store
	inTx bool
}

func (r *LedgerRepo) Create(_ context.Context, entry *entity.StockLedgerEntry) error {
	defer r.s.guard(r.inTx)()
	r.s.ledger = append(r.s.ledger, *entry)
	return nil
}

func (r *LedgerRepo) ListByMaterial(_ context.Context, materialID string, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	defer r.s.guard(r.inTx)()
	var list []*entity.StockLedgerEntry
	skipped := 0
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		e := r.s.ledger[i]
		if e.MaterialID != materialID || !matchesLedger(e, f) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		list = append(list, &e)
		if f.Limit > 0 && len(list) == f.Limit {
			break
		}
	}
	return list, nil
}

func matchesLedger(e entity.StockLedgerEntry, f repository.LedgerFilter) bool {
	if f.Direction != "" && e.Direction != f.Direction {
		return false
	}
	if f.Reference != "" && e.Reference != f.Reference {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func (r *LedgerRepo) ListChronological(_ context.Context, materialID string) ([]*entity.StockLedgerEntry, error) {
	defer r.s.guard(r.inTx)()
	var list []*entity.StockLedgerEntry
	for _, e := range r.s.ledger {
		if e.MaterialID == materialID {
			e := e
			list = append(list, &e)
		}
	}
	return list, nil
}

func (r *LedgerRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockLedgerEntry, error) {
	defer r.s.guard(r.inTx)()
	var list []*entity.StockLedgerEntry
	for _, e := range r.s.ledger {
		if e.Reference == reference {
			e := e
			list = append(list, &e)
		}
	}
	return list, nil
}

// ── Transacciones ─────────────────────────────────────────────────────────────

// TransactionRepo implementación en memoria de TransactionRepository.
type TransactionRepo struct {
	s    *Store
	inTx bool
}

func (r *TransactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	defer r.s.guard(r.inTx)()
	for _, t := range r.s.transactions {
		if t.Code == tx.Code {
			return domain.ErrConcurrentModification
		}
	}
	stored := *tx
	stored.Items = nil
	r.s.transactions[tx.ID] = stored
	r.s.txOrder = append(r.s.txOrder, tx.ID)
	return nil
}

func (r *TransactionRepo) CreateItem(_ context.Context, item *entity.TransactionItem) error {
	defer r.s.guard(r.inTx)()
	t, ok := r.s.transactions[item.TransactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Items = append(append([]entity.TransactionItem(nil), t.Items...), *item)
	r.s.transactions[item.TransactionID] = t
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	defer r.s.guard(r.inTx)()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	t.Items = append([]entity.TransactionItem(nil), t.Items...)
	return &t, nil
}

func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *TransactionRepo) MarkCancelled(_ context.Context, id, actorID string, at time.Time) error {
	defer r.s.guard(r.inTx)()
	t, ok := r.s.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = entity.TransactionStatusCancelled
	t.CancelledAt = &at
	t.CancelledBy = actorID
	t.UpdatedAt = at
	r.s.transactions[id] = t
	return nil
}

func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	defer r.s.guard(r.inTx)()
	var list []*entity.Transaction
	skipped := 0
	for i := len(r.s.txOrder) - 1; i >= 0; i-- {
		t := r.s.transactions[r.s.txOrder[i]]
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !t.CreatedAt.Before(*f.To) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		t.Items = append([]entity.TransactionItem(nil), t.Items...)
		list = append(list, &t)
		if f.Limit > 0 && len(list) == f.Limit {
			break
		}
	}
	return list, nil
}

// SequenceRepo contador diario; solo existe dentro de Run.
type SequenceRepo struct{ s *Store }

func (r *SequenceRepo) Next(_ context.Context, day time.Time) (int, error) {
	key := day.Format("2006-01-02")
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}
