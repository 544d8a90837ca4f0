package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "garaadka-laundry/docs"
	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/iam/application/auth"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/iam/domain/user"
	"garaadka-laundry/internal/iam/middleware"
	"garaadka-laundry/internal/laundry/cashclose"
	"garaadka-laundry/internal/laundry/customer"
	"garaadka-laundry/internal/laundry/order"
	"garaadka-laundry/internal/laundry/register"
	"garaadka-laundry/internal/pkg/httpmw"
	"garaadka-laundry/internal/pkg/log/accesslog"
	"garaadka-laundry/internal/pkg/ratelimit"
	"garaadka-laundry/internal/pkg/validation"
)

// Deps is everything the router needs. AccessLog and Limiter are optional.
type Deps struct {
	Env        string
	Origins    []string
	DB         *gorm.DB
	Logger     *zap.Logger
	Middleware middleware.Middleware
	AccessLog  *accesslog.Service
	Limiter    *ratelimit.IPRateLimiter

	Auth      auth.Controller
	Users     user.Controller
	Customers customer.Controller
	Orders    order.Controller
	Register  register.Controller
	CashClose cashclose.Controller
	Audit     audit.Controller
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	switch d.Env {
	case "dev":
		gin.SetMode(gin.DebugMode)
	case "prod":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		return nil, fmt.Errorf("invalid environment %q, must be 'dev' or 'prod'", d.Env)
	}

	validation.Register()

	r := gin.New()
	r.Use(
		httpmw.Recovery(d.Logger),
		httpmw.RequestLogger(d.Logger),
		httpmw.Metrics(),
		httpmw.Cors(d.Origins),
	)
	if d.AccessLog != nil {
		r.Use(accesslog.Middleware(d.AccessLog))
	}

	r.GET("/healthz", health(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/doc/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	SetupApiRoutes(r, d)
	return r, nil
}

func SetupApiRoutes(r *gin.Engine, d Deps) {
	route := r.Group("/api")

	limiter := func(c *gin.Context) { c.Next() }
	if d.Limiter != nil {
		limiter = ratelimit.Middleware(d.Limiter)
	}
	d.Auth.Routes(route, limiter)

	protected := route.Group("", d.Middleware.VerifyToken(), d.Middleware.AuditUser())
	adminGuard := d.Middleware.RequireRole(model.PositionAdmin)
	readGuard := d.Middleware.RequireRole(model.PositionAdmin, model.PositionManager)

	d.Users.Routes(protected, adminGuard)
	d.Customers.Routes(protected)
	d.Orders.Routes(protected)
	d.Register.Routes(protected)
	d.CashClose.Routes(protected)
	d.Audit.Routes(protected, readGuard, adminGuard)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
