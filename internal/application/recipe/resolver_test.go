package recipe_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/recipe"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/memory"
)

func newResolver(t *testing.T) (*recipe.Resolver, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded()
	conv := conversion.NewService(store.Units(), store.ConversionRules(), store.Materials(), zerolog.Nop())
	return recipe.NewResolver(store.MenuItems(), store.Recipes(), store.Materials(), conv), store
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRequiredMaterials_ConvierteAUnidadBase(t *testing.T) {
	r, _ := newResolver(t)
	reqs, err := r.RequiredMaterials(context.Background(), memory.MenuFriedRice, 4)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, memory.MaterialRice, reqs[0].MaterialID)
	assert.True(t, reqs[0].Quantity.Equal(d("0.74")), "4 × 1 cup × 0.185 kg, obtuvo %s", reqs[0].Quantity)
	assert.Equal(t, "kg", reqs[0].Unit)

	assert.Equal(t, memory.MaterialOil, reqs[1].MaterialID)
	assert.True(t, reqs[1].Quantity.Equal(d("0.12")), "4 × 30 ml = 0.12 l, obtuvo %s", reqs[1].Quantity)
	assert.Equal(t, "l", reqs[1].Unit)
}

// countingUnits cuenta las lecturas del catálogo de unidades.
type countingUnits struct {
	repository.UnitRepository
	lists int
}

func (c *countingUnits) List(ctx context.Context) ([]*entity.Unit, error) {
	c.lists++
	return c.UnitRepository.List(ctx)
}

func TestRequiredMaterials_CargaCatalogoUnaVezPorReceta(t *testing.T) {
	store := memory.NewSeeded()
	units := &countingUnits{UnitRepository: store.Units()}
	conv := conversion.NewService(units, store.ConversionRules(), store.Materials(), zerolog.Nop())
	r := recipe.NewResolver(store.MenuItems(), store.Recipes(), store.Materials(), conv)

	reqs, err := r.RequiredMaterials(context.Background(), memory.MenuFlatbread, 2)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.True(t, reqs[0].Quantity.Equal(d("0.4")), "2 × 200 g = 0.4 kg, obtuvo %s", reqs[0].Quantity)
	assert.Equal(t, "kg", reqs[0].Unit)
	assert.True(t, reqs[1].Quantity.Equal(d("0.02")), "2 × 10 ml = 0.02 l, obtuvo %s", reqs[1].Quantity)
	assert.Equal(t, "l", reqs[1].Unit)
	assert.Equal(t, 1, units.lists, "dos líneas de receta, una sola lectura del catálogo")
}

func TestRequiredMaterials_RecetaVaciaNoConsume(t *testing.T) {
	r, _ := newResolver(t)
	reqs, err := r.RequiredMaterials(context.Background(), memory.MenuWater, 3)
	require.NoError(t, err)
	assert.NotNil(t, reqs)
	assert.Empty(t, reqs)
}

func TestRequiredMaterials_Errores(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	_, err := r.RequiredMaterials(ctx, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrMenuItemNotFound)

	_, err = r.RequiredMaterials(ctx, memory.MenuFriedChicken, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRequiredMaterials_UnidadDesconocidaEnReceta(t *testing.T) {
	r, store := newResolver(t)
	store.AddRecipeLine(entity.RecipeLine{ID: "rl-x", MenuItemID: memory.MenuFlatbread, MaterialID: memory.MaterialFlour, Quantity: d("1"), UnitLabel: "pinch"})
	_, err := r.RequiredMaterials(context.Background(), memory.MenuFlatbread, 1)
	assert.ErrorIs(t, err, domain.ErrUnknownUnit)
}

func TestAggregate_SumaPorMaterialEnOrden(t *testing.T) {
	a := []entity.MaterialRequirement{
		{MaterialID: "oil", Quantity: d("0.03")},
		{MaterialID: "rice", Quantity: d("0.185")},
	}
	b := []entity.MaterialRequirement{
		{MaterialID: "flour", Quantity: d("0.2")},
		{MaterialID: "oil", Quantity: d("0.01")},
	}
	got := recipe.Aggregate(a, b)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"oil", "rice", "flour"}, []string{got[0].MaterialID, got[1].MaterialID, got[2].MaterialID})
	assert.True(t, got[0].Quantity.Equal(d("0.04")))
	assert.True(t, a[0].Quantity.Equal(d("0.03")), "las entradas no se modifican")
}

func TestCheckAvailability(t *testing.T) {
	r, store := newResolver(t)
	ctx := context.Background()

	av, err := r.CheckAvailability(ctx, memory.MenuFriedChicken, 5)
	require.NoError(t, err)
	assert.True(t, av.Available)
	assert.Empty(t, av.Shortages)

	store.SetOnHand(memory.MaterialChicken, d("3"))
	av, err = r.CheckAvailability(ctx, memory.MenuFriedChicken, 5)
	require.NoError(t, err)
	assert.False(t, av.Available)
	require.Len(t, av.Shortages, 1)
	s := av.Shortages[0]
	assert.Equal(t, "Chicken", s.MaterialName)
	assert.True(t, s.Required.Equal(d("5")))
	assert.True(t, s.Available.Equal(d("3")))
	assert.Equal(t, "pcs", s.Unit)

	av, err = r.CheckAvailability(ctx, memory.MenuWater, 100)
	require.NoError(t, err)
	assert.True(t, av.Available, "sin receta siempre disponible")
}
