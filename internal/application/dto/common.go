package dto

import "github.com/jhoicas/resto-pos-api/internal/domain"

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error HTTP.
// Fields lista los campos rechazados (VALIDATION); Details lleva faltantes o el detalle del pago.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
	Details any                 `json:"details,omitempty"`
}
