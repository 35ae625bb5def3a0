package memory

import (
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IDs del catálogo de demostración.
const (
	UnitKilogram   = "unit-kg"
	UnitGram       = "unit-g"
	UnitLiter      = "unit-l"
	UnitMilliliter = "unit-ml"
	UnitPiece      = "unit-pcs"
	UnitDozen      = "unit-dozen"

	MaterialChicken = "mat-chicken"
	MaterialFlour   = "mat-flour"
	MaterialOil     = "mat-oil"
	MaterialRice    = "mat-rice"

	MenuFriedChicken = "menu-fried-chicken"
	MenuFriedRice    = "menu-fried-rice"
	MenuFlatbread    = "menu-flatbread"
	MenuWater        = "menu-water"
	MenuSeasonalSoup = "menu-seasonal-soup"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// NewSeeded crea un store con un catálogo pequeño de restaurante (STORE_DRIVER=memory y pruebas).
//
//	Fried Chicken: 1 pcs de Chicken
//	Fried Rice:    1 cup de Rice (regla propia: 0.185 kg), 30 ml de Oil
//	Flatbread:     200 g de Flour, 10 ml de Oil
//	Water:         sin receta
//	Seasonal Soup: inactivo
func NewSeeded() *Store {
	s := New()

	s.AddUnit(entity.Unit{ID: UnitKilogram, Name: "Kilogram", Abbreviation: "kg", Dimension: entity.DimensionWeight, Factor: dec("1"), IsBase: true})
	s.AddUnit(entity.Unit{ID: UnitGram, Name: "Gram", Abbreviation: "g", Dimension: entity.DimensionWeight, BaseUnitID: UnitKilogram, Factor: dec("0.001")})
	s.AddUnit(entity.Unit{ID: UnitLiter, Name: "Liter", Abbreviation: "l", Dimension: entity.DimensionVolume, Factor: dec("1"), IsBase: true})
	s.AddUnit(entity.Unit{ID: UnitMilliliter, Name: "Milliliter", Abbreviation: "ml", Dimension: entity.DimensionVolume, BaseUnitID: UnitLiter, Factor: dec("0.001")})
	s.AddUnit(entity.Unit{ID: UnitPiece, Name: "Piece", Abbreviation: "pcs", Dimension: entity.DimensionCount, Factor: dec("1"), IsBase: true})
	s.AddUnit(entity.Unit{ID: UnitDozen, Name: "Dozen", Abbreviation: "dz", Dimension: entity.DimensionCount, BaseUnitID: UnitPiece, Factor: dec("12")})

	s.AddMaterial(entity.Material{ID: MaterialChicken, Name: "Chicken", BaseUnitID: UnitPiece, OnHand: dec("20"), UnitPrice: dec("6000"), Active: true})
	s.AddMaterial(entity.Material{ID: MaterialFlour, Name: "Flour", BaseUnitID: UnitKilogram, OnHand: dec("10"), UnitPrice: dec("3200"), Active: true})
	s.AddMaterial(entity.Material{ID: MaterialOil, Name: "Oil", BaseUnitID: UnitLiter, OnHand: dec("5"), UnitPrice: dec("9800"), Active: true})
	s.AddMaterial(entity.Material{ID: MaterialRice, Name: "Rice", BaseUnitID: UnitKilogram, OnHand: dec("8"), UnitPrice: dec("4100"), Active: true})

	s.rules = append(s.rules, entity.ConversionRule{ID: "rule-rice-cup", MaterialID: MaterialRice, UnitLabel: "cup", Multiplier: dec("0.185"), Note: "taza medidora"})

	s.AddMenuItem(entity.MenuItem{ID: MenuFriedChicken, Name: "Fried Chicken", Price: dec("15000"), Active: true})
	s.AddMenuItem(entity.MenuItem{ID: MenuFriedRice, Name: "Fried Rice", Price: dec("12000"), Active: true})
	s.AddMenuItem(entity.MenuItem{ID: MenuFlatbread, Name: "Flatbread", Price: dec("4000"), Active: true})
	s.AddMenuItem(entity.MenuItem{ID: MenuWater, Name: "Water", Price: dec("2000"), Active: true})
	s.AddMenuItem(entity.MenuItem{ID: MenuSeasonalSoup, Name: "Seasonal Soup", Price: dec("9000"), Active: false})

	s.AddRecipeLine(entity.RecipeLine{ID: "rl-1", MenuItemID: MenuFriedChicken, MaterialID: MaterialChicken, Quantity: dec("1"), UnitLabel: "pcs"})
	s.AddRecipeLine(entity.RecipeLine{ID: "rl-2", MenuItemID: MenuFriedRice, MaterialID: MaterialRice, Quantity: dec("1"), UnitLabel: "cup"})
	s.AddRecipeLine(entity.RecipeLine{ID: "rl-3", MenuItemID: MenuFriedRice, MaterialID: MaterialOil, Quantity: dec("30"), UnitLabel: "ml"})
	s.AddRecipeLine(entity.RecipeLine{ID: "rl-4", MenuItemID: MenuFlatbread, MaterialID: MaterialFlour, Quantity: dec("200"), UnitLabel: "g"})
	s.AddRecipeLine(entity.RecipeLine{ID: "rl-5", MenuItemID: MenuFlatbread, MaterialID: MaterialOil, Quantity: dec("10"), UnitLabel: "ml"})
	s.AddRecipeLine(entity.RecipeLine{ID: "rl-6", MenuItemID: MenuSeasonalSoup, MaterialID: MaterialChicken, Quantity: dec("1"), UnitLabel: "pcs"})
	return s
}

// SetOnHand fija la existencia de un material sin pasar por el libro (carga de pruebas).
func (s *Store) SetOnHand(materialID string, onHand decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.materials[materialID]; ok {
		m.OnHand = onHand
		s.materials[materialID] = m
	}
}
