package sales

import (
	"context"
	"fmt"
)

// ReceiptUseCase genera el recibo PDF de una venta.
type ReceiptUseCase struct {
	engine       *Engine
	generator    ReceiptGenerator
	businessName string
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(engine *Engine, generator ReceiptGenerator, businessName string) *ReceiptUseCase {
	return &ReceiptUseCase{engine: engine, generator: generator, businessName: businessName}
}

// Receipt devuelve (pdfBytes, filename, nil); domain.ErrTransactionNotFound si la venta no existe.
// Las ventas anuladas también tienen recibo (marcado como ANULADA).
func (uc *ReceiptUseCase) Receipt(ctx context.Context, transactionID string) ([]byte, string, error) {
	tx, err := uc.engine.GetSale(ctx, transactionID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.Generate(tx, uc.businessName)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("recibo-%s.pdf", tx.Code), nil
}
