package sales

import (
	"context"

	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain"
	"github.com/jhoicas/resto-pos-api/internal/domain/entity"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockLedger operaciones del libro de stock que usa una venta.
// Los métodos *InTx usan los repositorios de la unidad de trabajo del caller; si retornan
// error el caller debe hacer rollback.
type StockLedger interface {
	IncreaseInTx(ctx context.Context, repos repository.TxRepos, m stock.Movement) (*entity.StockLedgerEntry, error)
	DecreaseInTx(ctx context.Context, repos repository.TxRepos, m stock.Movement) (*entity.StockLedgerEntry, error)
	CheckInTx(ctx context.Context, repos repository.TxRepos, reqs []entity.MaterialRequirement) ([]domain.Shortage, error)
	Check(ctx context.Context, reqs []entity.MaterialRequirement) ([]domain.Shortage, error)
}

// RecipeResolver acceso a menús y a su consumo de materiales.
type RecipeResolver interface {
	MenuItem(ctx context.Context, menuItemID string) (*entity.MenuItem, error)
	RequiredFor(ctx context.Context, item *entity.MenuItem, quantitySold int) ([]entity.MaterialRequirement, error)
}

// Recorder métricas de ventas.
type Recorder interface {
	SaleCreated(total decimal.Decimal, items int)
	SaleCancelled()
	SaleRejected(reason string)
}

// ReceiptGenerator genera la representación PDF de una venta.
type ReceiptGenerator interface {
	Generate(tx *entity.Transaction, businessName string) ([]byte, error)
}

type nopRecorder struct{}

func (nopRecorder) SaleCreated(decimal.Decimal, int) {}
func (nopRecorder) SaleCancelled()                   {}
func (nopRecorder) SaleRejected(string)              {}
