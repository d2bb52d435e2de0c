package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smartwaste-backend/internal/simulator"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Post a single round of readings and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		sim := simulator.New(simulator.Config{
			APIBaseURL: viper.GetString("api.url"),
			Email:      viper.GetString("api.email"),
			Password:   viper.GetString("api.password"),
		})
		return sim.RunOnce(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
