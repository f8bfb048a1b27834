package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ddj82/roomi/api"
	"github.com/ddj82/roomi/config"
	"github.com/ddj82/roomi/internal/auth"
	"github.com/ddj82/roomi/internal/service/contract"
	"github.com/ddj82/roomi/internal/service/listing"
	"github.com/ddj82/roomi/internal/service/search"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Contracts contract.ContractUseCase
	Listings  listing.ListingUseCase
	Search    search.SearchUseCase
	Tokens    auth.TokenValidator
	Health    []Pinger
}

// Run starts the HTTP server and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, svc Services) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, log, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, log *zap.Logger, svc Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(log), api.Recovery(log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		for _, p := range svc.Health {
			if err := p.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	host := router.Group("/api/host", api.RequireHost(svc.Tokens))
	api.NewReservationHandler(svc.Contracts).Register(host.Group("/reservations"))
	api.NewDraftHandler(svc.Listings).Register(host.Group("/drafts"))
	api.NewSearchHandler(svc.Search).Register(router.Group("/api/rooms"))

	return router
}
