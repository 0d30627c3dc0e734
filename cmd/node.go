package cmd

import (
	"fmt"
	"time"

	"github.com/kostaleonard/leocoin/config"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/node"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	nodeConfigPath string
	iniConfigPath  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a LeoCoin node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode(nodeConfigPath, iniConfigPath)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&nodeConfigPath, "config", "c", "", "Path to node.yml (defaults when empty)")
	runCmd.Flags().StringVar(&iniConfigPath, "ini", "config/config.ini", "Path to config.ini with consensus, mining and discovery settings")
}

func loadOptions(nodePath, iniPath string) (node.Options, error) {
	var opts node.Options
	var err error

	if nodePath == "" {
		opts.Config = config.DefaultConfigFile()
	} else if opts.Config, err = config.LoadNodeConfig(nodePath); err != nil {
		return opts, fmt.Errorf("load node config: %w", err)
	}
	if opts.Consensus, err = config.LoadConsensusConfig(iniPath); err != nil {
		return opts, fmt.Errorf("load consensus config: %w", err)
	}
	if opts.Mining, err = config.LoadMiningConfig(iniPath); err != nil {
		return opts, fmt.Errorf("load mining config: %w", err)
	}
	if opts.Discovery, err = config.LoadDiscoveryConfig(iniPath); err != nil {
		return opts, fmt.Errorf("load discovery config: %w", err)
	}
	if opts.PrivKey, err = config.LoadPrivKey(opts.Config.Node); err != nil {
		return opts, fmt.Errorf("load private key: %w", err)
	}
	return opts, nil
}

func runNode(nodePath, iniPath string) error {
	opts, err := loadOptions(nodePath, iniPath)
	if err != nil {
		return err
	}
	monitoring.InitMetrics()

	n, err := node.New(opts)
	if err != nil {
		return err
	}
	if err := n.Start(); err != nil {
		_ = n.Stop(shutdownTimeout)
		return err
	}
	logx.Info("NODE", "consensus server listening on ", n.ServerAddr())

	sig := waitForSignal()
	logx.Info("NODE", "received ", sig, ", shutting down")
	return n.Stop(shutdownTimeout)
}
