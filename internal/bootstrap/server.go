package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/ticketing/api"
	"github.com/Domenick1991/ticketing/config"
	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HealthCheck is probed by /readyz; a failing check makes the instance unready.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handlers struct {
	Bookings *api.BookingHandler
	Payments *api.PaymentHandler
	Webhook  *api.WebhookHandler
	Events   *api.EventHandler
	Tickets  *api.TicketHandler
	Health   []HealthCheck
}

// NewRouter wires every route with its auth requirements.
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", readiness(h.Health))

	public := router.Group("/api")
	h.Webhook.Register(public)
	h.Events.Register(public)

	customer := router.Group("/api", middleware.JWTAuth(cfg.Auth.JWTSecret), middleware.RequireRole(domain.RoleUser))
	h.Bookings.Register(customer)
	h.Payments.Register(customer)
	h.Tickets.Register(customer)

	admin := router.Group("/api/admin", middleware.JWTAuth(cfg.Auth.JWTSecret), middleware.RequireRole(domain.RoleAdmin, domain.RoleOrganizer))
	h.Bookings.RegisterAdmin(admin)
	h.Events.RegisterAdmin(admin)

	return router
}

func readiness(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				failed[hc.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Run serves HTTP and blocks until the context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen http %s: %w", cfg.HTTP.Address, err)
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
