package router // router registers the HTTP routes of the carpool API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/orgatagova/orgatagova/internal/handler"
	"github.com/orgatagova/orgatagova/internal/middleware"
)

// Handlers groups the handler sets mounted by Register.
type Handlers struct {
	Carpools *handler.CarpoolHandler
	Public   *handler.PublicHandler
	Me       *handler.MeHandler
}

// Options carries the cross-cutting middleware.  Nil entries are skipped.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc // applied to public listings only
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes mounts the operational endpoints: /healthz and /metrics.
func RegisterRoutes(e *echo.Echo, db *gorm.DB) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic mounts the unauthenticated browse endpoints.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, opts Options) {
	mw := chain(opts.RateLimit, opts.Cache)
	e.GET("/v1/carpools", p.ListCarpools, mw...)
	e.GET("/v1/carpools/search", p.SearchCarpools, mw...)
	e.GET("/v1/users/:id", p.GetUser, chain(opts.RateLimit)...)
}

// RegisterCarpools mounts every endpoint that needs a session.  The rate
// limiter runs after JWTAuth so buckets can be keyed by user.
func RegisterCarpools(e *echo.Echo, h Handlers, opts Options) {
	g := e.Group("/v1", chain(middleware.JWTAuth(opts.JWTSecret), middleware.RequireUser(), opts.RateLimit)...)

	g.GET("/me", h.Me.Me)
	g.GET("/me/carpools", h.Me.Carpools)
	g.GET("/me/carpools/owned", h.Me.Owned)
	g.GET("/me/carpools/finished", h.Me.Finished)

	g.GET("/carpools/template", h.Carpools.Template)
	g.POST("/carpools", h.Carpools.Create)
	g.POST("/carpools/join", h.Carpools.JoinByCode)

	g.GET("/carpools/:id", h.Carpools.Get)
	g.PATCH("/carpools/:id", h.Carpools.Update)
	g.DELETE("/carpools/:id", h.Carpools.Delete)
	g.GET("/carpools/:id/status", h.Carpools.Status)
	g.GET("/carpools/:id/participants", h.Carpools.Participants)
	g.DELETE("/carpools/:id/participants/:userId", h.Carpools.RemoveParticipant)
	g.POST("/carpools/:id/join", h.Carpools.Join)

	g.GET("/carpools/:id/sober-driver", h.Carpools.SoberDriver)
	g.POST("/carpools/:id/sober-driver", h.Carpools.ClaimSoberDriver)
	g.PUT("/carpools/:id/sober-driver", h.Carpools.SwapSoberDriver)

	g.POST("/carpools/:id/finish", h.Carpools.Finish)
	g.POST("/carpools/:id/archive", h.Carpools.Archive)
	g.POST("/carpools/:id/unarchive", h.Carpools.Unarchive)
}

// Register mounts everything.
func Register(e *echo.Echo, db *gorm.DB, h Handlers, opts Options) {
	RegisterRoutes(e, db)
	RegisterPublic(e, h.Public, opts)
	RegisterCarpools(e, h, opts)
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
