package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// backend repositorios y transacciones del almacenamiento elegido.
type backend struct {
	tx         inventory.TxRunner
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	barcodes   repository.BarcodeRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	reports    repository.ReportRepository
	close      func()
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
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer be.close()

	// Locker: Redis si hay REDIS_ADDR (varias instancias), si no en proceso.
	var locker inventory.Locker = lock.NewLocal(cfg.Ledger.LockTimeout)
	if cfg.Redis.Addr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb, cfg.Ledger.LockTTL, cfg.Ledger.LockTimeout)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo distribuido con Redis")
	}

	barcodeUC := inventory.NewBarcodeUseCase(be.tx, be.barcodes, be.products)
	ledgerUC := inventory.NewRegisterMovementUseCase(
		be.tx, be.products, be.movements, barcodeUC, locker,
		inventory.RetryPolicy{MaxAttempts: cfg.Ledger.MaxAttempts, Backoff: cfg.Ledger.RetryBackoff},
		log.Zerolog(),
	)
	productUC := usecase.NewProductUseCase(be.tx, be.products, be.categories, be.suppliers, ledgerUC, log.Zerolog())
	categoryUC := usecase.NewCategoryUseCase(be.categories)
	supplierUC := usecase.NewSupplierUseCase(be.suppliers)
	reportUC := inventory.NewReportUseCase(be.reports)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		CategoryUC: categoryUC,
		SupplierUC: supplierUC,
		Ledger:     ledgerUC,
		BarcodeUC:  barcodeUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
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

// openBackend abre PostgreSQL (con migraciones) o el almacén en memoria según STORAGE.
func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if cfg.App.Storage == config.StorageMemory {
		s := memory.New()
		return &backend{
			tx:         s,
			products:   memory.NewProductRepository(s),
			movements:  memory.NewStockMovementRepository(s),
			barcodes:   memory.NewBarcodeRepository(s),
			categories: memory.NewCategoryRepository(s),
			suppliers:  memory.NewSupplierRepository(s),
			reports:    memory.NewReportRepository(s),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	return &backend{
		tx:         postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		barcodes:   postgres.NewBarcodeRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		close:      pool.Close,
	}, nil
}
