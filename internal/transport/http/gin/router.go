package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	redisrepo "github.com/kirinyoku/busseat/internal/repository/redis"
	"github.com/kirinyoku/busseat/internal/service"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *zap.Logger,
	jwtSecret []byte,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	optional := SessionAuth(jwtSecret, false)
	required := SessionAuth(jwtSecret, true)

	trips := r.Group("/trips")
	{
		trips.GET("/:id/seatmap", optional, handleSeatMap(svcs))
		trips.GET("/:id/fare", optional, handleFare(svcs))
	}

	tickets := r.Group("/tickets", required)
	{
		tickets.POST("/reserve", handleReserve(svcs, idem))
		tickets.DELETE("/reserve", handleRelease(svcs))
		tickets.POST("", handlePurchase(svcs, idem))
		tickets.GET("/:id", handleGetTicket(svcs))
	}

	admin := r.Group("", required, AdminOnly())
	{
		admin.POST("/frequencies/generate-trips", handleGenerateTrips(svcs))
		admin.POST("/frequencies", handleCreateFrequency(svcs))
		admin.DELETE("/frequencies/:id", handleDeleteFrequency(svcs))
		admin.POST("/trips", handleCreateTrip(svcs))
		admin.DELETE("/trips/:id", handleDeleteTrip(svcs))
	}

	return r
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
