// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	endpoint    string
	bearerToken string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "project-hub",
	Short: "Project Hub",
	Long:  `Project Hub CLI for serving the API and managing tenants, users and migrations.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "http://localhost:8080", "API endpoint")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", os.Getenv("PROJECT_HUB_TOKEN"), "Bearer token used to call the API")
}
