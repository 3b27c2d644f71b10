// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port           int      `envconfig:"port" default:"8080"`
	AllowedOrigins []string `envconfig:"allowed_origins" default:"*"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	JWTSecret string        `envconfig:"jwt_secret" required:"true"`
	JWTIssuer string        `envconfig:"jwt_issuer" default:"project-hub"`
	JWTTTL    time.Duration `envconfig:"jwt_ttl" default:"24h"`

	// AuthMode is hmac or oidc, oidc also accepts tokens from OIDCIssuer
	AuthMode      string `envconfig:"auth_mode" default:"hmac"`
	OIDCIssuer    string `envconfig:"oidc_issuer"`
	JWKSURL       string `envconfig:"jwks_url"`
	RequiredScope string `envconfig:"required_scope"`

	TrustedHeaders bool `envconfig:"trusted_headers" default:"false"`

	BcryptCost int `envconfig:"bcrypt_cost" default:"10"`

	DefaultMaxUsers    int `envconfig:"default_max_users" default:"50"`
	DefaultMaxProjects int `envconfig:"default_max_projects" default:"100"`

	NATSURL string `envconfig:"nats_url"`
}
