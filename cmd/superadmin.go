// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/credentials"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
	"github.com/canonical/project-hub/internal/validation"
)

var superAdminPassword string

var superAdminCmd = &cobra.Command{
	Use:   "superadmin",
	Short: "Manage platform super admins",
}

// createSuperAdminCmd writes straight to the database, super admins cannot
// be created through the API.
var createSuperAdminCmd = &cobra.Command{
	Use:   "create [email]",
	Short: "Create a tenant-less super admin account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := loadSpecs()
		if err != nil {
			return err
		}

		logger := logging.NewLogger(specs.LogLevel)
		defer logger.Sync()

		monitor := monitoring.NewNoopMonitor(serviceName, logger)
		tracer := tracing.NewNoopTracer()

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

		s := storage.NewStorage(dbClient, tracer, monitor, logger)
		transactor := audit.NewTransactor(dbClient, s, publisher, tracer, monitor, logger)

		user, err := createSuperAdmin(cmd.Context(), s, transactor, credentials.NewHasher(specs.BcryptCost), args[0], superAdminPassword)
		if err != nil {
			return err
		}

		logger.Security().AdminAction("cli", "create_super_admin", user.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Super admin created: %s (ID: %s)\n", user.Email, user.ID)
		return nil
	},
}

type superAdminStore interface {
	GetUserByEmail(ctx context.Context, tenantID *string, email string) (*types.User, error)
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
}

func createSuperAdmin(ctx context.Context, s superAdminStore, transactor audit.TransactorInterface, hasher *credentials.Hasher, email, password string) (*types.User, error) {
	if !validation.NewValidator().Email(email) {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	var created *types.User
	err = transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		_, err := s.GetUserByEmail(ctx, nil, email)
		if err == nil {
			return nil, fmt.Errorf("a super admin with email %s already exists", email)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		created, err = s.CreateUser(ctx, &types.User{
			Email:        email,
			PasswordHash: hash,
			Role:         types.RoleSuperAdmin,
		})
		if err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(identity.Identity{}, nil, types.KindUser, created.ID, types.AuditCreate, types.Metadata{"email": created.Email, "role": created.Role}),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}

	return created, nil
}

func init() {
	rootCmd.AddCommand(superAdminCmd)
	superAdminCmd.AddCommand(createSuperAdminCmd)

	createSuperAdminCmd.Flags().StringVar(&superAdminPassword, "password", "", "Password of the super admin")
	_ = createSuperAdminCmd.MarkFlagRequired("password")
}
