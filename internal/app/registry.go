package app

import (
	"database/sql"
	"go-crewpay/internal/batch"
	"go-crewpay/internal/debt"
	"go-crewpay/internal/employee"
	"go-crewpay/internal/foreman"
	"go-crewpay/internal/messaging/kafka"
	"go-crewpay/internal/payroll"
	"go-crewpay/internal/project"
	"go-crewpay/internal/shared/counter"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	batchRepo := batch.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	costRepo := project.NewCostRepository(gormDB)
	debtRepo := debt.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	foremanRepo := foreman.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)
	projectRepo := project.NewRepository(gormDB)

	standardPeriodDays, _ := strconv.Atoi(os.Getenv("PAYROLL_STANDARD_PERIOD_DAYS"))

	// --- Services ---
	batchService := batch.NewService(db, batchRepo)
	debtService := debt.NewService(db, debtRepo, employeeRepo)
	employeeService := employee.NewService(db, employeeRepo, counterRepo)
	foremanService := foreman.NewService(db, foremanRepo, costRepo, outboxRepo, counterRepo)
	payrollService := payroll.NewService(
		db,
		payrollRepo,
		outboxRepo,
		debtService,
		batchService,
		employeeRepo,
		standardPeriodDays,
	)
	projectService := project.NewService(db, projectRepo, costRepo)

	// --- Handlers ---
	batchHandler := batch.NewHandlerWithRedis(batchService, rdb)
	debtHandler := debt.NewHandlerWithRedis(debtService, rdb)
	employeeHandler := employee.NewHandler(employeeService)
	foremanHandler := foreman.NewHandlerWithRedis(foremanService, rdb)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb)
	projectHandler := project.NewHandler(projectService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		batch.RegisterRoutes(api, batchHandler, rdb)
		debt.RegisterRoutes(api, debtHandler, rdb)
		employee.RegisterRoutes(api, employeeHandler)
		foreman.RegisterRoutes(api, foremanHandler, rdb)
		payroll.RegisterRoutes(api, payrollHandler, rdb)
		project.RegisterRoutes(api, projectHandler)
	}

	return nil
}
