package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smartwaste-backend/internal/simulator"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Simulate crews emptying every bin above a fill threshold",
	RunE: func(_ *cobra.Command, _ []string) error {
		sim := simulator.New(simulator.Config{
			APIBaseURL: viper.GetString("api.url"),
			Email:      viper.GetString("api.email"),
			Password:   viper.GetString("api.password"),
		})
		return sim.CollectAll(context.Background(), viper.GetFloat64("simulator.collect_threshold"))
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().Float64("threshold", 85, "collect bins at or above this fill percentage")

	_ = viper.BindPFlag("simulator.collect_threshold", collectCmd.Flags().Lookup("threshold"))
}
