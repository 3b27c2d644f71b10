// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
	"github.com/canonical/project-hub/pkg/authentication"
)

var (
	clientID     string
	clientSecret string
	tokenURL     string
	issuerURL    string
	scopes       []string

	mint       bool
	mintUser   string
	mintTenant string
	mintRole   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Get an access token",
	Long: `Get an access token using the Client Credentials flow, or mint a session
token signed with JWT_SECRET when --mint is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if mint {
			token, err := mintSessionToken(ctx, os.Getenv("JWT_SECRET"), os.Getenv("JWT_ISSUER"))
			if err != nil {
				log.Fatalf("Failed to mint token: %v", err)
			}
			fmt.Println(token)
			return
		}

		if clientID == "" || clientSecret == "" {
			log.Fatal("--client-id and --client-secret are required")
		}

		if tokenURL == "" {
			if issuerURL == "" {
				log.Fatal("Either --token-url or --issuer-url must be provided")
			}

			// Discovery endpoint
			provider, err := oidc.NewProvider(ctx, issuerURL)
			if err != nil {
				log.Fatalf("Failed to create OIDC provider from issuer: %v", err)
			}
			tokenURL = provider.Endpoint().TokenURL
		}

		config := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		}

		token, err := config.Token(ctx)
		if err != nil {
			log.Fatalf("Failed to get token: %v", err)
		}

		fmt.Println(token.AccessToken)
	},
}

func mintSessionToken(ctx context.Context, secret, issuer string) (string, error) {
	if mintUser == "" {
		return "", errors.New("--user-id is required")
	}

	role := types.Role(mintRole)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", mintRole)
	}
	if role != types.RoleSuperAdmin && mintTenant == "" {
		return "", errors.New("--tenant-id is required for tenant roles")
	}

	if issuer == "" {
		issuer = serviceName
	}

	logger := logging.NewNoopLogger()
	tokens, err := authentication.NewHMACTokens(secret, issuer, 0, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(serviceName, logger), logger)
	if err != nil {
		return "", err
	}

	return tokens.IssueToken(ctx, identity.Identity{UserID: mintUser, TenantID: mintTenant, Role: role})
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&clientID, "client-id", "", "Client ID")
	tokenCmd.Flags().StringVar(&clientSecret, "client-secret", "", "Client Secret")
	tokenCmd.Flags().StringVar(&tokenURL, "token-url", "", "Token URL")
	tokenCmd.Flags().StringVar(&issuerURL, "issuer-url", "", "Issuer URL (for OIDC discovery)")
	tokenCmd.Flags().StringSliceVar(&scopes, "scopes", []string{}, "Scopes (comma-separated)")

	tokenCmd.Flags().BoolVar(&mint, "mint", false, "Mint an HS256 session token instead of calling an OAuth2 server")
	tokenCmd.Flags().StringVar(&mintUser, "user-id", "", "Subject of the minted token")
	tokenCmd.Flags().StringVar(&mintTenant, "tenant-id", "", "Tenant of the minted token")
	tokenCmd.Flags().StringVar(&mintRole, "role", string(types.RoleUser), "Role of the minted token")
}
