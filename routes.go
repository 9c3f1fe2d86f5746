package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/consensuslabs/pavilion-mint/internal/auth"
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	"github.com/consensuslabs/pavilion-mint/internal/health"
	apphttp "github.com/consensuslabs/pavilion-mint/internal/http"
	"github.com/consensuslabs/pavilion-mint/internal/http/middleware"
	"github.com/consensuslabs/pavilion-mint/internal/mint"
	"github.com/gin-gonic/gin"
)

// setupRoutes configures the middleware chain and all routes
func (a *App) setupRoutes() {
	a.router.Use(apphttp.RecoveryMiddleware(a.responseHandler, a.logger))
	a.router.Use(middleware.RequestLoggerMiddleware(a.logger))
	a.router.Use(apphttp.CORSMiddleware(a.config.Server.AllowedOrigins))

	healthHandler := health.NewHandler(a.responseHandler, a.healthChecks())
	a.router.GET("/health", healthHandler.HandleHealthCheck)

	v1 := a.router.Group("/api/v1", auth.WalletMiddleware(a.auth))
	{
		auth.NewHandler(a.auth, a.responseHandler).RegisterRoutes(v1)
		mint.NewHandler(a.mint, a.responseHandler, a.logger).RegisterRoutes(v1)

		if a.failures != nil {
			v1.GET("/failures/:stage", auth.RequireWallet(a.responseHandler), a.handleFailures)
		}
	}
}

func (a *App) healthChecks() map[string]health.Checker {
	checks := map[string]health.Checker{
		"database": a.dbService.Ping,
		"cache": func() error {
			return a.cache.Ping(context.Background())
		},
	}
	if a.scylla != nil {
		checks["scylladb"] = a.scylla.Ping
	}
	if a.ipfs != nil {
		checks["ipfs"] = func() error {
			if !a.ipfs.IsUp() {
				return errors.New("ipfs node unreachable")
			}
			return nil
		}
	}
	return checks
}

const (
	defaultFailuresLimit = 50
	maxFailuresLimit     = 500
)

// failureLister is the part of the timeline repository the failures route reads
type failureLister interface {
	ListFailures(ctx context.Context, wallet string, stage mint.Stage, limit int) ([]mint.Transition, error)
}

// handleFailures lists the caller's most recent sessions that failed at a stage
func (a *App) handleFailures(c *gin.Context) {
	stage := apperrors.Stage(c.Param("stage"))
	switch stage {
	case apperrors.StageCreation, apperrors.StageFetch, apperrors.StageUpdate, apperrors.StageWrite:
	default:
		a.responseHandler.ValidationErrorResponse(c, "stage", "Unknown stage")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFailuresLimit)))
	if err != nil || limit <= 0 {
		a.responseHandler.ValidationErrorResponse(c, "limit", "Limit must be a positive number")
		return
	}
	if limit > maxFailuresLimit {
		limit = maxFailuresLimit
	}

	wallet, _ := auth.GetWalletAddress(c)
	failures, err := a.failures.ListFailures(c.Request.Context(), wallet, stage, limit)
	if err != nil {
		a.responseHandler.InternalErrorResponse(c, "Failed to list failures", err)
		return
	}
	a.responseHandler.SuccessResponse(c, failures, "")
}
