// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/project-hub/internal/types"
	"github.com/canonical/project-hub/pkg/tenant"
	"github.com/canonical/project-hub/pkg/users"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var (
	registerPlan     string
	registerEmail    string
	registerPassword string
)

var registerTenantCmd = &cobra.Command{
	Use:   "register [name] [subdomain]",
	Short: "Register a tenant together with its first administrator",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &tenant.RegisterTenantRequest{
			Name:      args[0],
			Subdomain: args[1],
			Plan:      types.Plan(registerPlan),
			Admin: tenant.AdminRequest{
				Email:    registerEmail,
				Password: registerPassword,
			},
		}

		out := new(tenant.Registration)
		if err := newAPIClient(endpoint, "").do(cmd.Context(), "POST", "/auth/register-tenant", req, out); err != nil {
			return fmt.Errorf("failed to register tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant registered: %s (ID: %s)\n", out.Tenant.Name, out.Tenant.ID)
		fmt.Fprintln(cmd.OutOrStdout(), out.Token)
		return nil
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants visible to the caller",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out []*types.TenantWithStats
		if err := newAPIClient(endpoint, bearerToken).do(cmd.Context(), "GET", "/tenants", nil, &out); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSUBDOMAIN\tPLAN\tSTATUS\tUSERS\tPROJECTS")
		for _, t := range out {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%d/%d\n",
				t.ID, t.Name, t.Subdomain, t.Plan, t.Status,
				t.Stats.TotalUsers, t.MaxUsers, t.Stats.TotalProjects, t.MaxProjects,
			)
		}
		return w.Flush()
	},
}

var updateTenantCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := new(tenant.UpdateTenantRequest)
		flags := cmd.Flags()

		if flags.Changed("name") {
			v, _ := flags.GetString("name")
			req.Name = &v
		}
		if flags.Changed("plan") {
			v, _ := flags.GetString("plan")
			p := types.Plan(v)
			req.Plan = &p
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			s := types.TenantStatus(v)
			req.Status = &s
		}
		if flags.Changed("max-users") {
			v, _ := flags.GetInt("max-users")
			req.MaxUsers = &v
		}
		if flags.Changed("max-projects") {
			v, _ := flags.GetInt("max-projects")
			req.MaxProjects = &v
		}

		out := new(types.TenantWithStats)
		if err := newAPIClient(endpoint, bearerToken).do(cmd.Context(), "PUT", "/tenants/"+args[0], req, out); err != nil {
			return fmt.Errorf("failed to update tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant updated: %s\n", out.ID)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage tenant users",
}

var listUsersCmd = &cobra.Command{
	Use:   "list [tenant-id]",
	Short: "List users for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out []*types.User
		if err := newAPIClient(endpoint, bearerToken).do(cmd.Context(), "GET", "/tenants/"+args[0]+"/users", nil, &out); err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER_ID\tEMAIL\tROLE")
		for _, u := range out {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Email, u.Role)
		}
		return w.Flush()
	},
}

var (
	userPassword string
	userRole     string
)

var addUserCmd = &cobra.Command{
	Use:   "add [tenant-id] [email]",
	Short: "Add a user to a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &users.CreateUserRequest{
			Email:    args[1],
			Password: userPassword,
			Role:     types.Role(userRole),
		}

		out := new(types.User)
		if err := newAPIClient(endpoint, bearerToken).do(cmd.Context(), "POST", "/tenants/"+args[0]+"/users", req, out); err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User added: %s (ID: %s)\n", out.Email, out.ID)
		return nil
	},
}

var removeUserCmd = &cobra.Command{
	Use:   "remove [user-id]",
	Short: "Remove a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newAPIClient(endpoint, bearerToken).do(cmd.Context(), "DELETE", "/users/"+args[0], nil, nil); err != nil {
			return fmt.Errorf("failed to remove user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User removed: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(registerTenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(updateTenantCmd)
	tenantCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(addUserCmd)
	usersCmd.AddCommand(removeUserCmd)

	registerTenantCmd.Flags().StringVar(&registerPlan, "plan", string(types.PlanPro), "Tenant plan (free, pro or enterprise)")
	registerTenantCmd.Flags().StringVar(&registerEmail, "admin-email", "", "Email of the tenant administrator")
	registerTenantCmd.Flags().StringVar(&registerPassword, "admin-password", "", "Password of the tenant administrator")
	_ = registerTenantCmd.MarkFlagRequired("admin-email")
	_ = registerTenantCmd.MarkFlagRequired("admin-password")

	updateTenantCmd.Flags().String("name", "", "Tenant name")
	updateTenantCmd.Flags().String("plan", "", "Tenant plan")
	updateTenantCmd.Flags().String("status", "", "Tenant status")
	updateTenantCmd.Flags().Int("max-users", 0, "Maximum number of users")
	updateTenantCmd.Flags().Int("max-projects", 0, "Maximum number of projects")

	addUserCmd.Flags().StringVar(&userPassword, "password", "", "Initial password")
	addUserCmd.Flags().StringVar(&userRole, "role", string(types.RoleUser), "Role (tenant_admin or user)")
	_ = addUserCmd.MarkFlagRequired("password")
}
