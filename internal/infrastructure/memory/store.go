// Package memory implementa todos los repositorios sobre estructuras en memoria.
// Se usa en desarrollo (STORE_DRIVER=memory) y como doble de prueba de los casos de uso.
// Una unidad de trabajo (Run) mantiene el mutex del store hasta terminar y restaura una
// copia del estado si la función devuelve error.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
)

// Store estado completo del sistema en memoria.
type Store struct {
	mu sync.Mutex

	units        []entity.Unit
	materials    map[string]entity.Material
	rules        []entity.ConversionRule
	menuItems    map[string]entity.MenuItem
	recipes      []entity.RecipeLine
	ledger       []entity.StockLedgerEntry
	transactions map[string]entity.Transaction
	txOrder      []string
	sequences    map[string]int
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		materials:    make(map[string]entity.Material),
		menuItems:    make(map[string]entity.MenuItem),
		transactions: make(map[string]entity.Transaction),
		sequences:    make(map[string]int),
	}
}

type snapshot struct {
	units        []entity.Unit
	materials    map[string]entity.Material
	rules        []entity.ConversionRule
	menuItems    map[string]entity.MenuItem
	recipes      []entity.RecipeLine
	ledger       []entity.StockLedgerEntry
	transactions map[string]entity.Transaction
	txOrder      []string
	sequences    map[string]int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		units:        append([]entity.Unit(nil), s.units...),
		materials:    make(map[string]entity.Material, len(s.materials)),
		rules:        append([]entity.ConversionRule(nil), s.rules...),
		menuItems:    make(map[string]entity.MenuItem, len(s.menuItems)),
		recipes:      append([]entity.RecipeLine(nil), s.recipes...),
		ledger:       append([]entity.StockLedgerEntry(nil), s.ledger...),
		transactions: make(map[string]entity.Transaction, len(s.transactions)),
		txOrder:      append([]string(nil), s.txOrder...),
		sequences:    make(map[string]int, len(s.sequences)),
	}
	for k, v := range s.materials {
		snap.materials[k] = v
	}
	for k, v := range s.menuItems {
		snap.menuItems[k] = v
	}
	for k, v := range s.transactions {
		v.Items = append([]entity.TransactionItem(nil), v.Items...)
		snap.transactions[k] = v
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.units = snap.units
	s.materials = snap.materials
	s.rules = snap.rules
	s.menuItems = snap.menuItems
	s.recipes = snap.recipes
	s.ledger = snap.ledger
	s.transactions = snap.transactions
	s.txOrder = snap.txOrder
	s.sequences = snap.sequences
}

// guard toma el mutex salvo que la llamada ocurra dentro de Run (que ya lo tiene).
func (s *Store) guard(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Run ejecuta fn como una unidad de trabajo serializada: todo o nada.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	repos := repository.TxRepos{
		Materials:    &MaterialRepo{s: s, inTx: true},
		Ledger:       &LedgerRepo{s: s, inTx: true},
		Transactions: &TransactionRepo{s: s, inTx: true},
		Sequences:    &SequenceRepo{s: s},
	}
	if err := fn(repos); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Repositorios fuera de transacción (cada llamada toma el mutex).

func (s *Store) Materials() *MaterialRepo       { return &MaterialRepo{s: s} }
func (s *Store) Units() *UnitRepo               { return &UnitRepo{s: s} }
func (s *Store) ConversionRules() *RuleRepo     { return &RuleRepo{s: s} }
func (s *Store) MenuItems() *MenuRepo           { return &MenuRepo{s: s} }
func (s *Store) Recipes() *RecipeRepo           { return &RecipeRepo{s: s} }
func (s *Store) Ledger() *LedgerRepo            { return &LedgerRepo{s: s} }
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// ── Carga de catálogo (equivalente al CRUD administrativo externo) ──────────────

// AddUnit registra una unidad.
func (s *Store) AddUnit(u entity.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append(s.units, u)
}

// AddMaterial registra o reemplaza un material.
func (s *Store) AddMaterial(m entity.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.materials[m.ID] = m
}

// AddMenuItem registra o reemplaza un menú.
func (s *Store) AddMenuItem(item entity.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuItems[item.ID] = item
}

// AddRecipeLine agrega una línea de receta; reemplaza la existente para (menú, material).
func (s *Store) AddRecipeLine(line entity.RecipeLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.recipes {
		if l.MenuItemID == line.MenuItemID && l.MaterialID == line.MaterialID {
			s.recipes[i] = line
			return
		}
	}
	s.recipes = append(s.recipes, line)
}
