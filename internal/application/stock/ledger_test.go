package stock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*stock.Ledger, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded()
	conv := conversion.NewService(store.Units(), store.ConversionRules(), store.Materials(), zerolog.Nop())
	l := stock.NewLedger(store, store.Materials(), store.Ledger(), conv, zerolog.Nop())
	l.SetClock(func() time.Time { return fixedNow })
	return l, store
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func onHand(t *testing.T, store *memory.Store, id string) decimal.Decimal {
	t.Helper()
	m, err := store.Materials().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.OnHand
}

// ──────────────────────────────────────────────────────────────────────────────
// Increase / Decrease
// ──────────────────────────────────────────────────────────────────────────────

func TestDecrease_RegistraAsientoYActualizaExistencia(t *testing.T) {
	l, store := newLedger(t)
	entry, err := l.Decrease(context.Background(), stock.Movement{
		MaterialID: memory.MaterialChicken,
		Amount:     d("5"),
		ActorID:    "user-1",
		Reference:  "REF-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DirectionOut, entry.Direction)
	assert.True(t, entry.Quantity.Equal(d("5")))
	assert.True(t, entry.QuantityBefore.Equal(d("20")))
	assert.True(t, entry.QuantityAfter.Equal(d("15")))
	assert.Equal(t, fixedNow, entry.CreatedAt)
	assert.True(t, onHand(t, store, memory.MaterialChicken).Equal(d("15")))
}

func TestIncrease_SumaExistencia(t *testing.T) {
	l, store := newLedger(t)
	entry, err := l.Increase(context.Background(), stock.Movement{MaterialID: memory.MaterialFlour, Amount: d("2.5")})
	require.NoError(t, err)
	assert.True(t, entry.QuantityAfter.Equal(d("12.5")))
	assert.True(t, onHand(t, store, memory.MaterialFlour).Equal(d("12.5")))
}

func TestDecrease_StockInsuficienteNoModificaNada(t *testing.T) {
	l, store := newLedger(t)
	_, err := l.Decrease(context.Background(), stock.Movement{MaterialID: memory.MaterialChicken, Amount: d("21"), Unit: "pcs"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var serr *domain.ShortageError
	require.ErrorAs(t, err, &serr)
	require.Len(t, serr.Shortages, 1)
	assert.Equal(t, "Chicken", serr.Shortages[0].MaterialName)
	assert.True(t, serr.Shortages[0].Required.Equal(d("21")))
	assert.True(t, serr.Shortages[0].Available.Equal(d("20")))

	assert.True(t, onHand(t, store, memory.MaterialChicken).Equal(d("20")), "la existencia no cambia")
	entries, err := l.GetStockHistory(context.Background(), memory.MaterialChicken, repository.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries, "no se registran asientos")
}

func TestMovimiento_CantidadInvalida(t *testing.T) {
	l, _ := newLedger(t)
	for _, amount := range []string{"0", "-1", "0.00001"} {
		_, err := l.Increase(context.Background(), stock.Movement{MaterialID: memory.MaterialFlour, Amount: d(amount)})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "cantidad %s", amount)
	}
}

func TestMovimiento_MaterialInexistente(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.Decrease(context.Background(), stock.Movement{MaterialID: "no-existe", Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}

// Descuentos concurrentes: nunca se vende más de lo que hay.
func TestDecrease_ConcurrenteNuncaQuedaNegativo(t *testing.T) {
	l, store := newLedger(t)
	var g errgroup.Group
	results := make([]error, 30)
	for i := 0; i < 30; i++ {
		i := i
		g.Go(func() error {
			_, results[i] = l.Decrease(context.Background(), stock.Movement{MaterialID: memory.MaterialChicken, Amount: d("1")})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok, rejected := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 20, ok)
	assert.Equal(t, 10, rejected)
	assert.True(t, onHand(t, store, memory.MaterialChicken).IsZero())

	rec, err := l.Reconcile(context.Background(), memory.MaterialChicken)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "problema: %s", rec.Problem)
	assert.Equal(t, 20, rec.Entries)
}

// Conciliar mientras otros descuentan nunca reporta un libro sano como inconsistente.
func TestReconcile_ConcurrenteConDescuentos(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()
	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				if _, err := l.Decrease(ctx, stock.Movement{MaterialID: memory.MaterialOil, Amount: d("0.01")}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < 50; i++ {
			rec, err := l.Reconcile(ctx, memory.MaterialOil)
			if err != nil {
				return err
			}
			if !rec.Consistent {
				return errors.New("conciliación inconsistente: " + rec.Problem +
					" (existencia " + rec.OnHand.String() + ", libro " + rec.LedgerBalance.String() + ")")
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	assert.True(t, onHand(t, store, memory.MaterialOil).Equal(d("3")))
	rec, err := l.Reconcile(ctx, memory.MaterialOil)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 200, rec.Entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// CheckInTx
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckInTx_DevuelveTodosLosFaltantes(t *testing.T) {
	l, store := newLedger(t)
	reqs := []entity.MaterialRequirement{
		{MaterialID: memory.MaterialOil, MaterialName: "Oil", Quantity: d("6"), Unit: "l"},
		{MaterialID: memory.MaterialFlour, MaterialName: "Flour", Quantity: d("1"), Unit: "kg"},
		{MaterialID: memory.MaterialChicken, MaterialName: "Chicken", Quantity: d("25"), Unit: "pcs"},
	}
	var shortages []domain.Shortage
	err := store.Run(context.Background(), func(repos repository.TxRepos) error {
		var err error
		shortages, err = l.CheckInTx(context.Background(), repos, reqs)
		return err
	})
	require.NoError(t, err)
	require.Len(t, shortages, 2)
	assert.Equal(t, memory.MaterialOil, shortages[0].MaterialID, "se respeta el orden de los requerimientos")
	assert.Equal(t, memory.MaterialChicken, shortages[1].MaterialID)
	assert.Equal(t, "pcs", shortages[1].Unit)
}

func TestCheckInTx_MaterialInexistente(t *testing.T) {
	l, store := newLedger(t)
	err := store.Run(context.Background(), func(repos repository.TxRepos) error {
		_, err := l.CheckInTx(context.Background(), repos, []entity.MaterialRequirement{{MaterialID: "x", Quantity: d("1")}})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_ConvierteUnidad(t *testing.T) {
	l, store := newLedger(t)
	entry, err := l.AdjustStock(context.Background(), stock.AdjustInput{
		MaterialID: memory.MaterialFlour,
		Direction:  entity.DirectionIn,
		Amount:     d("500"),
		UnitLabel:  "g",
		ActorID:    "user-1",
		Note:       "compra",
	})
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("0.5")))
	assert.Regexp(t, `^ADJ-20261015-[0-9a-f]{8}$`, entry.Reference)
	assert.Equal(t, "compra", entry.Note)
	assert.True(t, onHand(t, store, memory.MaterialFlour).Equal(d("10.5")))
}

func TestAdjustStock_BajaConReglaPropia(t *testing.T) {
	l, store := newLedger(t)
	_, err := l.AdjustStock(context.Background(), stock.AdjustInput{
		MaterialID: memory.MaterialRice,
		Direction:  entity.DirectionOut,
		Amount:     d("2"),
		UnitLabel:  "cup",
	})
	require.NoError(t, err)
	assert.True(t, onHand(t, store, memory.MaterialRice).Equal(d("7.63")))
}

func TestAdjustStock_ReposicionRecalculaCostoPromedio(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()
	cost := d("3600")

	entry, err := l.AdjustStock(ctx, stock.AdjustInput{
		MaterialID: memory.MaterialFlour,
		Direction:  entity.DirectionIn,
		Amount:     d("10"),
		UnitCost:   &cost,
	})
	require.NoError(t, err)
	assert.True(t, entry.QuantityAfter.Equal(d("20")))

	m, err := store.Materials().GetByID(ctx, memory.MaterialFlour)
	require.NoError(t, err)
	assert.True(t, m.UnitPrice.Equal(d("3400")), "(10*3200 + 10*3600) / 20, obtenido %s", m.UnitPrice)

	_, err = l.AdjustStock(ctx, stock.AdjustInput{
		MaterialID: memory.MaterialFlour,
		Direction:  entity.DirectionOut,
		Amount:     d("1"),
		UnitCost:   &cost,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el costo solo aplica a entradas")
	assert.True(t, onHand(t, store, memory.MaterialFlour).Equal(d("20")))
}

func TestAdjustStock_Validaciones(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.AdjustStock(ctx, stock.AdjustInput{MaterialID: memory.MaterialFlour, Direction: "sideways", Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidStockDirection)

	_, err = l.AdjustStock(ctx, stock.AdjustInput{MaterialID: memory.MaterialFlour, Direction: entity.DirectionIn, Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.AdjustStock(ctx, stock.AdjustInput{MaterialID: memory.MaterialFlour, Direction: entity.DirectionIn, Amount: d("1"), UnitLabel: "ml"})
	assert.ErrorIs(t, err, domain.ErrIncompatibleDimension)

	_, err = l.AdjustStock(ctx, stock.AdjustInput{MaterialID: memory.MaterialChicken, Direction: entity.DirectionOut, Amount: d("2"), UnitLabel: "dz"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "2 docenas = 24 piezas > 20")
}

// ──────────────────────────────────────────────────────────────────────────────
// GetStockHistory / Reconcile
// ──────────────────────────────────────────────────────────────────────────────

func TestGetStockHistory_FiltrosYOrden(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	for i, amount := range []string{"1", "2", "3"} {
		_, err := l.Decrease(ctx, stock.Movement{MaterialID: memory.MaterialChicken, Amount: d(amount), Reference: "R" + amount})
		require.NoError(t, err, "movimiento %d", i)
	}
	_, err := l.Increase(ctx, stock.Movement{MaterialID: memory.MaterialChicken, Amount: d("10"), Reference: "R10"})
	require.NoError(t, err)

	all, err := l.GetStockHistory(ctx, memory.MaterialChicken, repository.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "R10", all[0].Reference, "más reciente primero")

	outs, err := l.GetStockHistory(ctx, memory.MaterialChicken, repository.LedgerFilter{Direction: entity.DirectionOut, Limit: 2})
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, "R3", outs[0].Reference)
	assert.Equal(t, "R2", outs[1].Reference)

	byRef, err := l.GetStockHistory(ctx, memory.MaterialChicken, repository.LedgerFilter{Reference: "R1"})
	require.NoError(t, err)
	require.Len(t, byRef, 1)

	_, err = l.GetStockHistory(ctx, "no-existe", repository.LedgerFilter{})
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)

	_, err = l.GetStockHistory(ctx, memory.MaterialChicken, repository.LedgerFilter{Direction: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidStockDirection)
}

func TestReconcile_DetectaDescuadre(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()
	_, err := l.Decrease(ctx, stock.Movement{MaterialID: memory.MaterialOil, Amount: d("1.25")})
	require.NoError(t, err)

	rec, err := l.Reconcile(ctx, memory.MaterialOil)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.OpeningBalance.Equal(d("5")))
	assert.True(t, rec.LedgerBalance.Equal(d("3.75")))

	// Una modificación por fuera del libro rompe la conciliación.
	store.SetOnHand(memory.MaterialOil, d("4"))
	rec, err = l.Reconcile(ctx, memory.MaterialOil)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.NotEmpty(t, rec.BrokenEntryID)
}

func TestReconcile_SinAsientosEsConsistente(t *testing.T) {
	l, _ := newLedger(t)
	rec, err := l.Reconcile(context.Background(), memory.MaterialRice)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Zero(t, rec.Entries)
}

func TestListYGetMaterial(t *testing.T) {
	l, _ := newLedger(t)
	list, err := l.ListMaterials(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, "Chicken", list[0].Name, "orden alfabético")

	_, err = l.GetMaterial(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}
