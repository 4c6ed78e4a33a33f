package cmd

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/klmtseng/BEAM-P2P/internal/signalserver"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a beam signal server",
	Long: `Run the signal server that assigns peer identities and brokers WebRTC
handshakes between beam clients. Message content never touches this server;
it only relays connect requests and SDP/ICE signals.

Examples:
  beam serve
  beam serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hub := signalserver.NewHub()
		go hub.Run()

		slog.Info("starting signal server", "addr", flagServeAddr)
		return http.ListenAndServe(flagServeAddr, signalserver.NewServeMux(hub))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&flagServeAddr, "addr", "a", ":8080", "Listen address")
}
