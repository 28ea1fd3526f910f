package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/waggytrails/walker-scheduler/internal/audit"
	"github.com/waggytrails/walker-scheduler/internal/config"
	"github.com/waggytrails/walker-scheduler/internal/domain/schedule"
	"github.com/waggytrails/walker-scheduler/internal/events"
	"github.com/waggytrails/walker-scheduler/internal/handlers"
	infraRepo "github.com/waggytrails/walker-scheduler/internal/infra/repository"
	"github.com/waggytrails/walker-scheduler/internal/logging"
	"github.com/waggytrails/walker-scheduler/internal/middleware"
	"github.com/waggytrails/walker-scheduler/internal/payments"
	"github.com/waggytrails/walker-scheduler/internal/storage"
	"github.com/waggytrails/walker-scheduler/internal/traveltime"
	ucBooking "github.com/waggytrails/walker-scheduler/internal/usecase/booking"

	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	scheduleRepo := infraRepo.NewScheduleGormRepository(
		db,
		time.Duration(cfg.LockTimeoutMS)*time.Millisecond,
	)

	travelStore := infraRepo.NewTravelTimeGormStore(db)
	osrm := traveltime.NewOSRMProvider(cfg.OSRMUrl, 5*time.Second)
	travelCache := traveltime.NewCache(
		travelStore,
		rdb,
		osrm,
		time.Duration(cfg.TravelStaleDays)*24*time.Hour,
		nil,
	)

	subscribers := []events.Subscriber{audit.New(db)}
	if cfg.MPAccessToken != "" {
		collector, err := payments.NewCollector(cfg.MPAccessToken)
		if err != nil {
			logging.L().Warn("payment collector disabled", zap.Error(err))
		} else {
			subscribers = append(subscribers, collector)
		}
	}
	dispatcher := events.NewDispatcher(subscribers...)

	slotGen := schedule.NewSlotGenerator(
		scheduleRepo,
		travelCache,
		time.Duration(cfg.SlotGranularityMin)*time.Minute,
	)

	photos := storage.NewPhotoStore(cfg)

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	commitUC := ucBooking.NewCommitBooking(scheduleRepo, travelCache, dispatcher)
	getSlotsUC := ucBooking.NewGetSlots(scheduleRepo, slotGen)
	listByDateUC := ucBooking.NewListBookingsByDate(scheduleRepo)
	confirmUC := ucBooking.NewConfirmBooking(scheduleRepo)
	cancelUC := ucBooking.NewCancelBooking(scheduleRepo, dispatcher)
	startUC := ucBooking.NewStartBooking(scheduleRepo)
	completeUC := ucBooking.NewCompleteBooking(scheduleRepo)
	noShowUC := ucBooking.NewMarkNoShow(scheduleRepo, dispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db, photos)
	serviceHandler := handlers.NewServiceHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)
	blockHandler := handlers.NewBlockHandler(db)
	locationHandler := handlers.NewLocationHandler(db)

	bookingHandler := handlers.NewBookingHandler(
		scheduleRepo,
		commitUC,
		getSlotsUC,
		listByDateUC,
		confirmUC,
		cancelUC,
		startUC,
		completeUC,
		noShowUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	publicHandler := handlers.NewPublicHandler(db, scheduleRepo, commitUC, getSlotsUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/bookings", publicHandler.CreateBooking)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me", meHandler.UpdateMe)
			secured.POST("/me/photo", meHandler.UploadPhoto)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			secured.GET("/me/blocks", blockHandler.List)
			secured.POST("/me/blocks", blockHandler.Create)
			secured.DELETE("/me/blocks/:id", blockHandler.Delete)

			secured.GET("/me/locations", locationHandler.List)
			secured.POST("/me/locations", locationHandler.Create)
			secured.PATCH("/me/locations/:id", locationHandler.Update)
			secured.DELETE("/me/locations/:id", locationHandler.Delete)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.POST("/me/bookings", bookingHandler.Create)
			secured.GET("/me/bookings", bookingHandler.ListByDate)
			secured.GET("/me/bookings/slots", bookingHandler.Slots)
			secured.GET("/me/bookings/free-windows", bookingHandler.FreeWindows)
			secured.PATCH("/me/bookings/:id/confirm", bookingHandler.Confirm)
			secured.PATCH("/me/bookings/:id/cancel", bookingHandler.Cancel)
			secured.PATCH("/me/bookings/:id/start", bookingHandler.Start)
			secured.PATCH("/me/bookings/:id/complete", bookingHandler.Complete)
			secured.PATCH("/me/bookings/:id/no-show", bookingHandler.NoShow)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
