package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/vendhub/internal/dashboard/domain"
	"github.com/smallbiznis/vendhub/internal/datasource"
	"github.com/smallbiznis/vendhub/internal/inventory"
	"github.com/smallbiznis/vendhub/internal/movers"
	"github.com/smallbiznis/vendhub/internal/observability"
	obsmiddleware "github.com/smallbiznis/vendhub/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/vendhub/internal/observability/metrics"
	obstracing "github.com/smallbiznis/vendhub/internal/observability/tracing"
	"github.com/smallbiznis/vendhub/internal/pipeline"
	"github.com/smallbiznis/vendhub/internal/routeops"
	"github.com/smallbiznis/vendhub/internal/stockout"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(obsmetrics.NewHTTPMetrics),
	datasource.Module,
	inventory.Module,
	stockout.Module,
	movers.Module,
	routeops.Module,
	pipeline.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	dashboardSvc dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DashboardSvc dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		dashboardSvc: p.DashboardSvc,
	}

	svc.registerReportRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerReportRoutes() {
	reports := s.engine.Group("/api/reports")

	reports.GET("/overview", s.GetOverview)
	reports.GET("/inventory", s.GetInventory)
	reports.GET("/stockouts", s.GetStockouts)
	reports.GET("/movers", s.GetMovers)
	reports.GET("/routes", s.GetRoutes)
	reports.GET("/pipeline", s.GetPipeline)
	reports.POST("/refresh", s.PostRefresh)
}
