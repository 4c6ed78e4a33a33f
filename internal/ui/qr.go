package ui

import (
	"fmt"
	"os"

	"github.com/mdp/qrterminal/v3"
)

// RenderQR prints a scannable QR code for a join link to the terminal.
func RenderQR(joinLink string) {
	fmt.Printf("%s Scan to pair:\n\n", IconQR)
	qrterminal.GenerateWithConfig(joinLink, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    os.Stdout,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
	fmt.Println()
}
