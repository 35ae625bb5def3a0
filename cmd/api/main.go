package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/recipe"
	"github.com/jhoicas/resto-pos-api/internal/application/sales"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/internal/domain/repository"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/resto-pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/resto-pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/resto-pos-api/internal/interfaces/http"
	"github.com/jhoicas/resto-pos-api/pkg/config"
	"github.com/jhoicas/resto-pos-api/pkg/logger"
)

// repos agrupa los puertos de almacenamiento del driver elegido.
type repos struct {
	txRunner     stock.TxRunner
	materials    repository.MaterialRepository
	units        repository.UnitRepository
	rules        repository.ConversionRuleRepository
	menuItems    repository.MenuItemRepository
	recipes      repository.RecipeRepository
	ledger       repository.StockLedgerRepository
	transactions repository.TransactionRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var r repos
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("store en memoria con catálogo de demostración; los datos no se persisten")
		r = memoryRepos(memory.NewSeeded())
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, logger.Component(log, "postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		r = postgresRepos(pool, logger.Component(log, "postgres"))
	}

	loc, err := cfg.Sales.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de ventas")
	}

	var (
		recorder    sales.Recorder
		requests    httpRouter.RequestRecorder
		metricsRecs *metrics.Recorder
	)
	if cfg.Metrics.Enabled {
		metricsRecs = metrics.New("resto_pos")
		recorder, requests = metricsRecs, metricsRecs
	}

	conversionSvc := conversion.NewService(r.units, r.rules, r.materials, logger.Component(log, "conversion"))
	ledger := stock.NewLedger(r.txRunner, r.materials, r.ledger, conversionSvc, logger.Component(log, "stock"))
	resolver := recipe.NewResolver(r.menuItems, r.recipes, r.materials, conversionSvc)
	engine := sales.NewEngine(r.txRunner, ledger, resolver, r.transactions, recorder,
		logger.Component(log, "sales"),
		sales.Config{CodePrefix: cfg.Sales.CodePrefix, Location: loc})

	// PDF: recibo de venta
	receiptUC := sales.NewReceiptUseCase(engine, infrapdf.NewReceiptGenerator(), cfg.App.Name)

	opts := httpRouter.AppOptions{
		Name:        cfg.App.Name,
		Log:         logger.Component(log, "http"),
		Requests:    requests,
		SwaggerFile: cfg.Docs.SwaggerFile,
	}
	if metricsRecs != nil {
		opts.MetricsHandler = metricsRecs.Handler()
	}
	app := httpRouter.NewApp(opts, httpRouter.RouterDeps{
		Conversions: conversionSvc,
		Ledger:      ledger,
		Resolver:    resolver,
		Engine:      engine,
		Receipts:    receiptUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func memoryRepos(store *memory.Store) repos {
	return repos{
		txRunner:     store,
		materials:    store.Materials(),
		units:        store.Units(),
		rules:        store.ConversionRules(),
		menuItems:    store.MenuItems(),
		recipes:      store.Recipes(),
		ledger:       store.Ledger(),
		transactions: store.Transactions(),
	}
}

func postgresRepos(pool *pgxpool.Pool, log zerolog.Logger) repos {
	return repos{
		txRunner:     postgres.NewTxRunner(pool, log),
		materials:    postgres.NewMaterialRepository(pool),
		units:        postgres.NewUnitRepository(pool),
		rules:        postgres.NewConversionRuleRepository(pool),
		menuItems:    postgres.NewMenuItemRepository(pool),
		recipes:      postgres.NewRecipeRepository(pool),
		ledger:       postgres.NewStockLedgerRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
	}
}
