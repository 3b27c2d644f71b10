// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/config"
	"github.com/canonical/project-hub/internal/credentials"
	"github.com/canonical/project-hub/internal/db"
	"github.com/canonical/project-hub/internal/events"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/monitoring/prometheus"
	"github.com/canonical/project-hub/internal/quota"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tenancy"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
	"github.com/canonical/project-hub/internal/validation"
	"github.com/canonical/project-hub/pkg/authentication"
	"github.com/canonical/project-hub/pkg/metrics"
	"github.com/canonical/project-hub/pkg/projects"
	"github.com/canonical/project-hub/pkg/session"
	"github.com/canonical/project-hub/pkg/status"
	"github.com/canonical/project-hub/pkg/tasks"
	"github.com/canonical/project-hub/pkg/tenant"
	"github.com/canonical/project-hub/pkg/users"
	"github.com/canonical/project-hub/pkg/web"
)

const serviceName = "project-hub"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func loadSpecs() (*config.EnvSpec, error) {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %s", err)
	}
	return specs, nil
}

func openDB(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*db.DBClient, error) {
	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:             specs.DSN,
			MaxConns:        specs.DBMaxConns,
			MinConns:        specs.DBMinConns,
			MaxConnLifetime: specs.DBMaxConnLifetime,
			MaxConnIdleTime: specs.DBMaxConnIdleTime,
			TracingEnabled:  specs.TracingEnabled,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %v", err)
	}
	return dbClient, nil
}

// newPublisher returns a NATS publisher, or a noop one when no URL is configured.
func newPublisher(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (events.PublisherInterface, func(), error) {
	if specs.NATSURL == "" {
		logger.Info("NATS URL not set, audit events are not published")
		p := events.NewNoopPublisher()
		return p, p.Close, nil
	}

	p, err := events.NewPublisher(events.Config{URL: specs.NATSURL, ServiceName: serviceName}, tracer, monitor, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create event publisher: %v", err)
	}
	return p, p.Close, nil
}

// newHandler wires storage, services and APIs into the HTTP router.
func newHandler(
	ctx context.Context,
	specs *config.EnvSpec,
	dbClient *db.DBClient,
	publisher audit.PublisherInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (http.Handler, error) {
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	validator := validation.NewValidator()
	hasher := credentials.NewHasher(specs.BcryptCost)

	tokens, err := authentication.NewHMACTokens(specs.JWTSecret, specs.JWTIssuer, specs.JWTTTL, tracer, monitor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session tokens: %v", err)
	}

	verifier, err := authentication.NewAuthenticator(
		ctx,
		authentication.Config{
			Mode:          specs.AuthMode,
			Issuer:        specs.OIDCIssuer,
			JWKSURL:       specs.JWKSURL,
			RequiredScope: specs.RequiredScope,
		},
		tokens,
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %v", err)
	}

	provider, err := newMigrationProvider(dbClient.DB(), true)
	if err != nil {
		return nil, err
	}

	transactor := audit.NewTransactor(dbClient, s, publisher, tracer, monitor, logger)
	authorizer := authorization.NewAuthorizer(tracer, monitor, logger)
	resolver := tenancy.NewResolver(s, tracer, monitor, logger)
	guard := quota.NewGuard(s, tracer, monitor, logger)

	limits := types.TenantLimits{MaxUsers: specs.DefaultMaxUsers, MaxProjects: specs.DefaultMaxProjects}

	tenantService := tenant.NewService(s, dbClient, transactor, authorizer, hasher, tokens, validator, limits, tracer, monitor, logger)
	usersService := users.NewService(s, transactor, authorizer, guard, hasher, validator, tracer, monitor, logger)
	projectsService := projects.NewService(s, dbClient, transactor, authorizer, guard, tracer, monitor, logger)
	tasksService := tasks.NewService(s, resolver, dbClient, transactor, authorizer, tracer, monitor, logger)
	sessionService := session.NewService(s, hasher, tokens, tracer, monitor, logger)

	tenantAPI := tenant.NewAPI(tenantService, tracer, monitor, logger)
	sessionAPI := session.NewAPI(sessionService, tracer, monitor, logger)

	return web.NewRouter(
		web.Routes{
			Metrics: metrics.NewAPI(logger),
			Status:  status.NewAPI(dbClient, provider, tracer, monitor, logger),
			Public: []web.PublicEndpointsInterface{
				tenantAPI,
				sessionAPI,
			},
			Protected: []web.EndpointsInterface{
				tenantAPI,
				sessionAPI,
				users.NewAPI(usersService, tracer, monitor, logger),
				projects.NewAPI(projectsService, tracer, monitor, logger),
				tasks.NewAPI(tasksService, tracer, monitor, logger),
			},
			Authenticate:   authentication.NewMiddleware(verifier, tracer, monitor, logger).Authenticate(),
			TrustedHeaders: specs.TrustedHeaders,
			AllowedOrigins: specs.AllowedOrigins,
		},
		tracer,
		monitor,
		logger,
	), nil
}

func serve() error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbClient, err := openDB(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	publisher, closePublisher, err := newPublisher(specs, tracer, monitor, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	router, err := newHandler(context.Background(), specs, dbClient, publisher, tracer, monitor, logger)
	if err != nil {
		return err
	}

	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
