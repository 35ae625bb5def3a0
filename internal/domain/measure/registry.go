// Package measure implementa el registro de unidades y la conversión entre unidades de una
// misma dimensión (servicio de dominio puro, sin I/O).
package measure

import (
	"fmt"
	"strings"

	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// QuantityScale decimales con los que se guardan las cantidades de stock.
const QuantityScale = 4

// RoundQuantity redondea una cantidad a la escala del libro de stock.
func RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Round(QuantityScale)
}

// NormalizeLabel normaliza una etiqueta de unidad para compararla ("  KG " == "kg").
// Un Caser no es seguro entre goroutines, por eso se crea en cada llamada.
func NormalizeLabel(label string) string {
	return cases.Fold().String(strings.TrimSpace(label))
}

// Convert convierte qty de la unidad from a la unidad to: qty * from.Factor / to.Factor.
func Convert(qty decimal.Decimal, from, to *entity.Unit) (decimal.Decimal, error) {
	if from == nil || to == nil {
		return decimal.Zero, domain.ErrUnitNotFound
	}
	if from.Dimension != to.Dimension {
		return decimal.Zero, fmt.Errorf("%s (%s) → %s (%s): %w",
			from.Name, from.Dimension, to.Name, to.Dimension, domain.ErrIncompatibleDimension)
	}
	if to.Factor.IsZero() || !from.Factor.IsPositive() || to.Factor.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s → %s: %w", from.Name, to.Name, domain.ErrInvalidUnitDefinition)
	}
	if from.ID == to.ID {
		return qty, nil
	}
	return qty.Mul(from.Factor).Div(to.Factor), nil
}

// Registry índice en memoria del catálogo de unidades.
type Registry struct {
	byID    map[string]*entity.Unit
	byLabel map[string]*entity.Unit
	bases   map[string][]*entity.Unit
	units   []*entity.Unit
}

// NewRegistry indexa las unidades por ID, nombre y abreviatura.
func NewRegistry(units []*entity.Unit) *Registry {
	r := &Registry{
		byID:    make(map[string]*entity.Unit, len(units)),
		byLabel: make(map[string]*entity.Unit, len(units)*2),
		bases:   make(map[string][]*entity.Unit),
		units:   units,
	}
	for _, u := range units {
		r.byID[u.ID] = u
		if u.IsBase {
			r.bases[u.Dimension] = append(r.bases[u.Dimension], u)
		}
	}
	// Las abreviaturas tienen prioridad sobre los nombres ("g" gana a una unidad llamada "G").
	for _, u := range units {
		if n := NormalizeLabel(u.Name); n != "" {
			if _, taken := r.byLabel[n]; !taken {
				r.byLabel[n] = u
			}
		}
	}
	for _, u := range units {
		if a := NormalizeLabel(u.Abbreviation); a != "" {
			r.byLabel[a] = u
		}
	}
	return r
}

// Units devuelve las unidades registradas.
func (r *Registry) Units() []*entity.Unit { return r.units }

// Get busca una unidad por ID.
func (r *Registry) Get(id string) (*entity.Unit, bool) {
	u, ok := r.byID[id]
	return u, ok
}

// Lookup resuelve una referencia: ID, nombre o abreviatura.
func (r *Registry) Lookup(ref string) (*entity.Unit, bool) {
	if u, ok := r.byID[ref]; ok {
		return u, true
	}
	u, ok := r.byLabel[NormalizeLabel(ref)]
	return u, ok
}

// Base devuelve la unidad base de la dimensión.
func (r *Registry) Base(dimension string) (*entity.Unit, bool) {
	bases := r.bases[dimension]
	if len(bases) == 0 {
		return nil, false
	}
	return bases[0], true
}

// BaseOf devuelve la unidad base de u: su BaseUnitID si está definido, si no la base de la dimensión.
func (r *Registry) BaseOf(u *entity.Unit) (*entity.Unit, bool) {
	if u.IsBase {
		return u, true
	}
	if u.BaseUnitID != "" {
		if b, ok := r.byID[u.BaseUnitID]; ok {
			return b, true
		}
	}
	return r.Base(u.Dimension)
}

// Convert resuelve ambas referencias y convierte.
func (r *Registry) Convert(qty decimal.Decimal, fromRef, toRef string) (decimal.Decimal, error) {
	from, ok := r.Lookup(fromRef)
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", fromRef, domain.ErrUnitNotFound)
	}
	to, ok := r.Lookup(toRef)
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", toRef, domain.ErrUnitNotFound)
	}
	return Convert(qty, from, to)
}

// ToBase convierte qty a la unidad base de la unidad indicada.
func (r *Registry) ToBase(qty decimal.Decimal, unitRef string) (decimal.Decimal, error) {
	u, ok := r.Lookup(unitRef)
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", unitRef, domain.ErrUnitNotFound)
	}
	base, ok := r.BaseOf(u)
	if !ok {
		return decimal.Zero, fmt.Errorf("%s sin unidad base: %w", u.Dimension, domain.ErrInvalidUnitDefinition)
	}
	return Convert(qty, u, base)
}

// Check verifica que cada dimensión tenga exactamente una unidad base con factor 1.
func (r *Registry) Check() error {
	var problems []string
	var dims []string
	seen := map[string]bool{}
	for _, u := range r.units {
		if !seen[u.Dimension] {
			seen[u.Dimension] = true
			dims = append(dims, u.Dimension)
		}
	}
	for _, dim := range dims {
		bases := r.bases[dim]
		switch {
		case len(bases) == 0:
			problems = append(problems, dim+": sin unidad base")
		case len(bases) > 1:
			problems = append(problems, dim+": más de una unidad base")
		case !bases[0].Factor.Equal(decimal.NewFromInt(1)):
			problems = append(problems, dim+": la unidad base debe tener factor 1")
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", strings.Join(problems, "; "), domain.ErrInvalidUnitDefinition)
}
