package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Clases de error (sin dependencias externas). Cada error específico envuelve una clase
// para que la capa HTTP decida el status sin conocer todos los casos.
var (
	ErrInvalidInput = errors.New("entrada inválida")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrIntegrity    = errors.New("error de consistencia")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// No encontrados.
var (
	ErrMaterialNotFound    = fmt.Errorf("material: %w", ErrNotFound)
	ErrMenuItemNotFound    = fmt.Errorf("menú: %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transacción: %w", ErrNotFound)
	ErrUnitNotFound        = fmt.Errorf("unidad: %w", ErrNotFound)
)

// Validación.
var (
	ErrInvalidAmount         = fmt.Errorf("la cantidad debe ser mayor que cero: %w", ErrInvalidInput)
	ErrUnknownUnit           = fmt.Errorf("unidad desconocida para el material: %w", ErrInvalidInput)
	ErrIncompatibleDimension = fmt.Errorf("unidades de dimensiones distintas: %w", ErrInvalidInput)
	ErrInvalidUnitDefinition = fmt.Errorf("definición de unidad degenerada: %w", ErrInvalidInput)
	ErrMenuItemUnavailable   = fmt.Errorf("el menú no está disponible: %w", ErrInvalidInput)
	ErrInvalidStockDirection = fmt.Errorf("dirección de movimiento inválida: %w", ErrInvalidInput)
)

// Conflictos.
var (
	ErrInsufficientStock   = fmt.Errorf("stock insuficiente: %w", ErrConflict)
	ErrInsufficientPayment = fmt.Errorf("pago insuficiente: %w", ErrConflict)
	ErrDuplicateConversion = fmt.Errorf("ya existe una conversión para esa unidad: %w", ErrConflict)
	ErrAlreadyCancelled    = fmt.Errorf("la transacción ya fue cancelada: %w", ErrConflict)
)

// Integridad: abortan la unidad de trabajo completa.
var (
	ErrLedgerMismatch         = fmt.Errorf("asiento de stock no cuadra: %w", ErrIntegrity)
	ErrConcurrentModification = fmt.Errorf("modificación concurrente detectada: %w", ErrIntegrity)
)

// FieldError describe un campo rechazado en la validación.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError agrupa los campos inválidos de una petición.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError crea un error de validación con un único campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// Add agrega un campo inválido.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil devuelve nil si no se registró ningún campo.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return ErrInvalidInput.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Shortage es el déficit de un material frente a lo requerido.
type Shortage struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Unit         string          `json:"unit"`
}

// ShortageError lleva la lista completa de faltantes de una operación rechazada.
type ShortageError struct {
	Shortages []Shortage
}

func (e *ShortageError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s requiere %s %s, disponible %s",
			s.MaterialName, s.Required.String(), s.Unit, s.Available.String()))
	}
	return ErrInsufficientStock.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ShortageError) Unwrap() error { return ErrInsufficientStock }

// PaymentError indica que el monto recibido no cubre el total.
type PaymentError struct {
	Total    decimal.Decimal `json:"total"`
	Tendered decimal.Decimal `json:"tendered"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: total %s, recibido %s",
		ErrInsufficientPayment.Error(), e.Total.StringFixed(2), e.Tendered.StringFixed(2))
}

func (e *PaymentError) Unwrap() error { return ErrInsufficientPayment }

// codes en orden: primero los específicos, luego las clases.
var codes = []struct {
	err  error
	code string
}{
	{ErrMaterialNotFound, "MATERIAL_NOT_FOUND"},
	{ErrMenuItemNotFound, "MENU_ITEM_NOT_FOUND"},
	{ErrTransactionNotFound, "TRANSACTION_NOT_FOUND"},
	{ErrUnitNotFound, "UNIT_NOT_FOUND"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrUnknownUnit, "UNKNOWN_UNIT"},
	{ErrIncompatibleDimension, "INCOMPATIBLE_DIMENSION"},
	{ErrInvalidUnitDefinition, "INVALID_UNIT_DEFINITION"},
	{ErrMenuItemUnavailable, "MENU_ITEM_UNAVAILABLE"},
	{ErrInvalidStockDirection, "INVALID_DIRECTION"},
	{ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{ErrInsufficientPayment, "INSUFFICIENT_PAYMENT"},
	{ErrDuplicateConversion, "DUPLICATE_CONVERSION"},
	{ErrAlreadyCancelled, "ALREADY_CANCELLED"},
	{ErrLedgerMismatch, "LEDGER_MISMATCH"},
	{ErrConcurrentModification, "CONCURRENT_MODIFICATION"},
	{ErrInvalidInput, "VALIDATION"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrConflict, "CONFLICT"},
	{ErrIntegrity, "INTEGRITY"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, "FORBIDDEN"},
}

// Code devuelve el código estable de un error de dominio; "INTERNAL" si no es de dominio.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}
