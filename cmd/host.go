package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klmtseng/BEAM-P2P/internal/beam"
	"github.com/klmtseng/BEAM-P2P/internal/config"
	"github.com/klmtseng/BEAM-P2P/internal/ui"
)

var (
	flagHostGroup    bool
	flagHostDomain   string
	flagHostName     string
	flagHostSTUN     string
	flagHostTURN     string
	flagHostTURNUser string
	flagHostTURNPass string
	flagHostRelay    bool
	flagHostNoQR     bool
)

var hostCmd = &cobra.Command{
	Use:     "host",
	Aliases: []string{"h"},
	Short:   "Host a beam and wait for peers to pair",
	Long: `Host a beam: prints your peer identity, a shareable join link and a QR
code, then drops into the chat room as peers connect.

Examples:
  beam host
  beam host --group
  beam host --group --name Alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostBeam()
	},
}

func hostBeam() error {
	cfg, err := loadConfig(config.Options{
		Domain:      flagHostDomain,
		DisplayName: flagHostName,
		STUNServer:  flagHostSTUN,
		TURNServer:  flagHostTURN,
		TURNUser:    flagHostTURNUser,
		TURNPass:    flagHostTURNPass,
		ForceRelay:  flagHostRelay,
	})
	if err != nil {
		return err
	}

	mode := beam.ModeDirect
	if flagHostGroup {
		mode = beam.ModeGroup
	}

	fmt.Println()
	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	joinLink := cfg.GetJoinLink(sess.Identity(), string(mode))

	fmt.Println()
	ui.RenderBeamInfo(sess.Identity(), joinLink, mode)
	if !flagHostNoQR {
		fmt.Println()
		ui.RenderQR(joinLink)
	}

	return ui.RunChat(sess)
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().BoolVarP(&flagHostGroup, "group", "g", false, "Host a group beam instead of a direct tunnel")
	hostCmd.Flags().StringVarP(&flagHostDomain, "domain", "d", "", "Custom signal server domain")
	hostCmd.Flags().StringVarP(&flagHostName, "name", "n", "", "Display name on outgoing messages")
	hostCmd.Flags().StringVarP(&flagHostSTUN, "stun", "s", "", "Custom STUN server")
	hostCmd.Flags().StringVarP(&flagHostTURN, "turn", "t", "", "Custom TURN server")
	hostCmd.Flags().StringVar(&flagHostTURNUser, "turn-user", "", "TURN username")
	hostCmd.Flags().StringVar(&flagHostTURNPass, "turn-pass", "", "TURN password")
	hostCmd.Flags().BoolVarP(&flagHostRelay, "relay", "r", false, "Force relay mode")
	hostCmd.Flags().BoolVar(&flagHostNoQR, "no-qr", false, "Skip the QR code")
}
