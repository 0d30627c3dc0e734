package cmd

import (
	"time"

	"github.com/kostaleonard/leocoin/bootstrap"
	"github.com/kostaleonard/leocoin/config"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/spf13/cobra"
)

var bootstrapAddr string

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run the peer discovery bootstrap server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(bootstrapAddr, iniConfigPath)
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().StringVarP(&bootstrapAddr, "listen", "l", config.DefaultBootstrapAddr, "Address to accept registrations on")
	bootstrapCmd.Flags().StringVar(&iniConfigPath, "ini", "config/config.ini", "Path to config.ini with discovery settings")
}

func runBootstrap(addr, iniPath string) error {
	disc, err := config.LoadDiscoveryConfig(iniPath)
	if err != nil {
		return err
	}
	cons, err := config.LoadConsensusConfig(iniPath)
	if err != nil {
		return err
	}

	s, err := bootstrap.NewServer(addr, bootstrap.Config{
		Keepalive:   time.Duration(disc.KeepaliveSeconds) * time.Second,
		IOTimeout:   time.Duration(cons.IOTimeoutMs) * time.Millisecond,
		PollTimeout: time.Duration(cons.PollTimeoutMs) * time.Millisecond,
		Limiter:     cons.NewLimiter(),
	})
	if err != nil {
		logx.Error("BOOTSTRAP NODE", "Failed to listen:", err)
		return err
	}
	task := s.Start()

	sig := waitForSignal()
	logx.Info("BOOTSTRAP NODE", "received ", sig, ", shutting down")
	if err, ok := task.StopAndJoin(shutdownTimeout); !ok {
		logx.Warn("BOOTSTRAP NODE", "server did not stop within ", shutdownTimeout)
	} else if err != nil {
		return err
	}
	return nil
}
