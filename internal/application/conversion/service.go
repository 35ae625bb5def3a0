package conversion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/measure"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service tabla de conversiones: reglas propias de cada material con respaldo en el
// registro genérico de unidades.
type Service struct {
	units     repository.UnitRepository
	rules     repository.ConversionRuleRepository
	materials repository.MaterialRepository
	log       zerolog.Logger
}

// NewService construye el servicio.
func NewService(
	units repository.UnitRepository,
	rules repository.ConversionRuleRepository,
	materials repository.MaterialRepository,
	log zerolog.Logger,
) *Service {
	return &Service{units: units, rules: rules, materials: materials, log: log}
}

// CreateRuleInput datos para registrar una conversión propia de un material.
type CreateRuleInput struct {
	MaterialID string
	UnitLabel  string
	Multiplier decimal.Decimal
	Note       string
}

// Registry carga el catálogo de unidades. Un catálogo inconsistente se registra pero no
// bloquea las conversiones que sí son válidas.
func (s *Service) Registry(ctx context.Context) (*measure.Registry, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar unidades: %w", err)
	}
	reg := measure.NewRegistry(units)
	if err := reg.Check(); err != nil {
		s.log.Warn().Err(err).Msg("catálogo de unidades inconsistente")
	}
	return reg, nil
}

// ListUnits devuelve el catálogo de unidades.
func (s *Service) ListUnits(ctx context.Context) ([]*entity.Unit, error) {
	reg, err := s.Registry(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Units(), nil
}

// ConvertUnit convierte qty entre dos unidades del registro (ID, nombre o abreviatura).
func (s *Service) ConvertUnit(ctx context.Context, qty decimal.Decimal, fromUnit, toUnit string) (decimal.Decimal, error) {
	reg, err := s.Registry(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return reg.Convert(qty, fromUnit, toUnit)
}

// Resolve devuelve cuántas unidades base del material equivalen a 1 unitLabel.
// Orden: regla propia del material, luego el registro genérico; ErrUnknownUnit si ninguno aplica.
func (s *Service) Resolve(ctx context.Context, materialID, unitLabel string) (decimal.Decimal, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("obtener material: %w", err)
	}
	if material == nil {
		return decimal.Zero, domain.ErrMaterialNotFound
	}
	reg, err := s.Registry(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.ResolveFor(ctx, reg, material, unitLabel)
}

// ResolveFor igual que Resolve con material y registro ya cargados (evita relecturas en recetas largas).
func (s *Service) ResolveFor(ctx context.Context, reg *measure.Registry, material *entity.Material, unitLabel string) (decimal.Decimal, error) {
	label := measure.NormalizeLabel(unitLabel)
	base, hasBase := reg.Get(material.BaseUnitID)

	// Sin etiqueta o con la unidad base del material: factor 1.
	if label == "" {
		return decimal.NewFromInt(1), nil
	}
	if hasBase && (label == measure.NormalizeLabel(base.Abbreviation) || label == measure.NormalizeLabel(base.Name)) {
		return decimal.NewFromInt(1), nil
	}

	rule, err := s.rules.GetByMaterialAndLabel(ctx, material.ID, label)
	if err != nil {
		return decimal.Zero, fmt.Errorf("obtener conversión: %w", err)
	}
	if rule != nil {
		return rule.Multiplier, nil
	}

	unit, ok := reg.Lookup(label)
	if !ok {
		return decimal.Zero, fmt.Errorf("%q para %s: %w", unitLabel, material.Name, domain.ErrUnknownUnit)
	}
	if !hasBase {
		return decimal.Zero, fmt.Errorf("%s sin unidad base: %w", material.Name, domain.ErrInvalidUnitDefinition)
	}
	return measure.Convert(decimal.NewFromInt(1), unit, base)
}

// BaseUnitLabel abreviatura de la unidad base (o el ID si no está en el catálogo).
func (s *Service) BaseUnitLabel(ctx context.Context, baseUnitID string) string {
	reg, err := s.Registry(ctx)
	if err != nil {
		return baseUnitID
	}
	return UnitLabel(reg, baseUnitID)
}

// UnitLabel abreviatura (o nombre) de una unidad del registro; el ID si no existe.
func UnitLabel(reg *measure.Registry, unitID string) string {
	if u, ok := reg.Get(unitID); ok {
		if u.Abbreviation != "" {
			return u.Abbreviation
		}
		return u.Name
	}
	return unitID
}

// Create registra una regla propia; ErrDuplicateConversion si ya existe para (material, etiqueta).
func (s *Service) Create(ctx context.Context, in CreateRuleInput) (*entity.ConversionRule, error) {
	verr := &domain.ValidationError{}
	if in.MaterialID == "" {
		verr.Add("material_id", "requerido")
	}
	label := measure.NormalizeLabel(in.UnitLabel)
	if label == "" {
		verr.Add("unit_label", "requerido")
	}
	if !in.Multiplier.IsPositive() {
		verr.Add("multiplier", "debe ser mayor que cero")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	material, err := s.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("obtener material: %w", err)
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	reg, err := s.Registry(ctx)
	if err != nil {
		return nil, err
	}
	// La unidad base siempre resuelve a 1: una regla con esa etiqueta nunca se aplicaría.
	if base, ok := reg.Get(material.BaseUnitID); ok &&
		(label == measure.NormalizeLabel(base.Abbreviation) || label == measure.NormalizeLabel(base.Name)) {
		return nil, domain.NewValidationError("unit_label", "no puede ser la unidad base del material")
	}
	existing, err := s.rules.GetByMaterialAndLabel(ctx, in.MaterialID, label)
	if err != nil {
		return nil, fmt.Errorf("obtener conversión: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateConversion
	}

	rule := &entity.ConversionRule{
		ID:         uuid.New().String(),
		MaterialID: in.MaterialID,
		UnitLabel:  label,
		Multiplier: in.Multiplier,
		Note:       in.Note,
		CreatedAt:  time.Now(),
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("material_id", rule.MaterialID).
		Str("unit_label", rule.UnitLabel).
		Str("multiplier", rule.Multiplier.String()).
		Msg("conversión registrada")
	return rule, nil
}

// List lista las reglas propias de un material.
func (s *Service) List(ctx context.Context, materialID string) ([]*entity.ConversionRule, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("obtener material: %w", err)
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	return s.rules.ListByMaterial(ctx, materialID)
}
