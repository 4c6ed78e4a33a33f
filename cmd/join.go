package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/klmtseng/BEAM-P2P/internal/beam"
	"github.com/klmtseng/BEAM-P2P/internal/config"
	"github.com/klmtseng/BEAM-P2P/internal/ui"
)

var (
	flagJoinMode     string
	flagJoinDomain   string
	flagJoinName     string
	flagJoinSTUN     string
	flagJoinTURN     string
	flagJoinTURNUser string
	flagJoinTURNPass string
	flagJoinRelay    bool
)

var joinCmd = &cobra.Command{
	Use:     "join <join-link|identity>",
	Aliases: []string{"j"},
	Short:   "Join a beam via link or peer identity",
	Long: `Join a beam hosted by another peer, either from the full join link
(the QR code payload) or from a bare peer identity.

Examples:
  beam join https://beam.qzz.io/#/join/tiny-otter-sunbeam?mode=group
  beam join tiny-otter-sunbeam
  beam join tiny-otter-sunbeam --mode group`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseJoinTarget(args[0])
		if err != nil {
			return err
		}
		return joinBeam(ref)
	},
}

// parseJoinTarget accepts a full join reference or a bare identity; the
// --mode flag only applies to the latter.
func parseJoinTarget(input string) (beam.JoinRef, error) {
	input = strings.TrimSpace(input)
	if ref, ok := beam.ParseJoinRef(input); ok {
		return ref, nil
	}
	if input == "" || strings.ContainsAny(input, "/?#") {
		return beam.JoinRef{}, beam.WrapError("parse join target", beam.ErrPeerUnreachable, input)
	}
	return beam.JoinRef{Identity: input, Mode: beam.ParseMode(flagJoinMode)}, nil
}

func joinBeam(ref beam.JoinRef) error {
	cfg, err := loadConfig(config.Options{
		Domain:      flagJoinDomain,
		DisplayName: flagJoinName,
		STUNServer:  flagJoinSTUN,
		TURNServer:  flagJoinTURN,
		TURNUser:    flagJoinTURNUser,
		TURNPass:    flagJoinTURNPass,
		ForceRelay:  flagJoinRelay,
	})
	if err != nil {
		return err
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Connect(ref.Identity, ref.Mode)
	if err := waitForBeam(sess, ref.Identity); err != nil {
		return err
	}

	return ui.RunChat(sess)
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVarP(&flagJoinMode, "mode", "m", "direct", "Beam mode for a bare identity: direct or group")
	joinCmd.Flags().StringVarP(&flagJoinDomain, "domain", "d", "", "Custom signal server domain")
	joinCmd.Flags().StringVarP(&flagJoinName, "name", "n", "", "Display name on outgoing messages")
	joinCmd.Flags().StringVarP(&flagJoinSTUN, "stun", "s", "", "Custom STUN server")
	joinCmd.Flags().StringVarP(&flagJoinTURN, "turn", "t", "", "Custom TURN server")
	joinCmd.Flags().StringVar(&flagJoinTURNUser, "turn-user", "", "TURN username")
	joinCmd.Flags().StringVar(&flagJoinTURNPass, "turn-pass", "", "TURN password")
	joinCmd.Flags().BoolVarP(&flagJoinRelay, "relay", "r", false, "Force relay mode")
}
