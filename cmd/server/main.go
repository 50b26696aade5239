package main

import (
	"context"
	"errors"
	"strings"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/attendance"
	"restoran-admin/internal/audit"
	"restoran-admin/internal/auth"
	"restoran-admin/internal/config"
	"restoran-admin/internal/database"
	"restoran-admin/internal/employee"
	"restoran-admin/internal/inventory"
	"restoran-admin/internal/logger"
	"restoran-admin/internal/menu"
	"restoran-admin/internal/models"
	"restoran-admin/internal/recipe"
	"restoran-admin/internal/workday"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnvFile()
	log := logger.New(config.AppEnv())
	defer log.Sync()

	cfg := config.Load(log)
	db := database.Init(cfg, log)

	ledger := inventory.NewLedger(db, inventory.LedgerConfig{
		LowStockThreshold:  cfg.LowStockThreshold,
		AllowNegativeStock: cfg.AllowNegativeStock,
	}, log)
	recipes := recipe.NewService(db, log)
	menuItems := menu.NewService(db, log)
	employees := employee.NewService(db, log)
	attendances := attendance.NewService(db, log)
	workdays := workday.NewStore(db, cfg.StandardHoursTolerance, log)

	if err := workdays.SeedDefaults(context.Background()); err != nil {
		log.Fatalw("çalışma günü ayarları hazırlanamadı", "error", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"error":   e.Message,
				})
			}
			log.Errorw("beklenmeyen hata", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   apperr.UnexpectedMessage,
			})
		},
	})

	app.Use(recover.New())

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Okuma
	protected.Get("/recipes", recipe.ListRecipesHandler(recipes))
	protected.Get("/recipes/:id", recipe.GetRecipeHandler(recipes))
	protected.Get("/ingredients/stock", inventory.ListStockHandler(ledger))
	protected.Get("/ingredients/:id/stock", inventory.GetStockHandler(ledger))
	protected.Get("/menu-items", menu.ListMenuItemsHandler(menuItems))
	protected.Get("/employees", employee.ListEmployeesHandler(employees))
	protected.Get("/shifts", attendance.ListShiftsHandler(attendances))
	protected.Get("/working-days", workday.ListHandler(workdays))
	protected.Get("/time-keepings/summary", attendance.MonthlySummaryHandler(attendances))

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Tarifler
	adminRoutes.Post("/recipes", recipe.CreateRecipeHandler(recipes))
	adminRoutes.Put("/recipes/:id", recipe.UpdateRecipeHandler(recipes))
	adminRoutes.Delete("/recipes/:id", recipe.DeleteRecipeHandler(recipes))
	adminRoutes.Delete("/recipes/:id/hard", recipe.HardDeleteRecipeHandler(recipes))
	adminRoutes.Post("/recipes/:id/duplicate", recipe.DuplicateRecipeHandler(recipes))

	// Malzemeler ve stok hareketleri
	adminRoutes.Post("/ingredients", inventory.CreateIngredientHandler(ledger))
	adminRoutes.Put("/ingredients/:id", inventory.UpdateIngredientHandler(ledger))
	adminRoutes.Delete("/ingredients/:id", inventory.DeleteIngredientHandler(ledger))
	adminRoutes.Post("/ingredients/:id/transactions", inventory.RecordTransactionHandler(ledger))

	// Menü
	adminRoutes.Post("/menu-items", menu.CreateMenuItemHandler(menuItems))
	adminRoutes.Put("/menu-items/:id", menu.UpdateMenuItemHandler(menuItems))
	adminRoutes.Delete("/menu-items/:id", menu.DeleteMenuItemHandler(menuItems))
	adminRoutes.Post("/menu-items/:id/duplicate", menu.DuplicateMenuItemHandler(menuItems))

	// Personel ve puantaj
	adminRoutes.Post("/employees", employee.CreateEmployeeHandler(employees))
	adminRoutes.Put("/employees/:id/salary", employee.UpdateSalaryHandler(employees))
	adminRoutes.Post("/shifts", attendance.CreateShiftHandler(attendances))
	adminRoutes.Post("/time-keepings", attendance.CreateTimeKeepingHandler(attendances))
	adminRoutes.Put("/working-days", workday.UpdateSettingsHandler(workdays))

	// Audit log
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Infow("sunucu başlatılıyor", "port", cfg.HTTPPort, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatalw("sunucu durdu", "error", err)
	}
}
