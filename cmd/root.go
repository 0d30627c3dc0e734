package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "leocoin",
	Short: "LeoCoin proof-of-work node CLI",
	Long:  "Command line interface for running and inspecting a LeoCoin node.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load before running")
}

// loadEnv reads path into the process environment when it exists. Variables
// already set win over the file.
func loadEnv(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logx.Warn("CMD", "could not load ", path, ": ", err)
		return
	}
	logx.Reload()
}

func waitForSignal() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	return <-sigCh
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
