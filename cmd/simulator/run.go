package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smartwaste-backend/internal/simulator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Post readings for every active bin on a timer",
	RunE:  runSimulator,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Duration("interval", 30*time.Second, "time between reading rounds")

	_ = viper.BindPFlag("simulator.interval", runCmd.Flags().Lookup("interval"))
}

func runSimulator(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simulator.Config{
		APIBaseURL: viper.GetString("api.url"),
		Email:      viper.GetString("api.email"),
		Password:   viper.GetString("api.password"),
		Interval:   viper.GetDuration("simulator.interval"),
	})

	if err := sim.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
