// Package main is the sensor fleet simulator CLI. It exercises the live API
// the way a deployment of real fill sensors would.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "simulator",
		Short: "Virtual bin sensor fleet",
		Long: `Drives virtual fill sensors against a running backend:
- run: post readings for every active bin on a timer
- once: post a single round of readings
- collect: simulate crews emptying full bins`,
		Version: "1.0.0",
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./simulator.yaml)")
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "base URL of the backend API")
	rootCmd.PersistentFlags().String("email", "staff@smartwaste.city", "account to authenticate as")
	rootCmd.PersistentFlags().String("password", "staff123", "account password")

	// Bind flags to viper
	if err := viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url")); err != nil {
		log.Fatalf("failed to bind api-url flag: %v", err)
	}
	if err := viper.BindPFlag("api.email", rootCmd.PersistentFlags().Lookup("email")); err != nil {
		log.Fatalf("failed to bind email flag: %v", err)
	}
	if err := viper.BindPFlag("api.password", rootCmd.PersistentFlags().Lookup("password")); err != nil {
		log.Fatalf("failed to bind password flag: %v", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("simulator")
	}

	viper.SetEnvPrefix("SMARTWASTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
