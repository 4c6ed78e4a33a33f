package main

import (
	"github.com/klmtseng/BEAM-P2P/cmd"
	"github.com/klmtseng/BEAM-P2P/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init()
	cmd.Execute()
}
