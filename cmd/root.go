package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/klmtseng/BEAM-P2P/internal/ui"
	"github.com/klmtseng/BEAM-P2P/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "beam",
	Short:   "Peer-to-peer messaging over WebRTC data channels, paired via QR code or link",
	Long:    `Beam is a command-line messenger that establishes direct or group WebRTC data-channel tunnels between devices. Peers pair by sharing a join link or scanning a QR code; messages, images and files travel peer-to-peer without touching a relay server. In group mode one host fans messages out to every guest.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
