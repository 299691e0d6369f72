// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/config"
	"github.com/verdantlabs/chainsense/internal/server"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting ChainSense Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   ________          _      _____                     ",
		"  / ____/ /_  ____ _(_)___ / ___/___  ____  ________  ",
		" / /   / __ \\/ __ `/ / __ \\\\__ \\/ _ \\/ __ \\/ ___/ _ \\ ",
		"/ /___/ / / / /_/ / / / / /__/ /  __/ / / (__  )  __/ ",
		"\\____/_/ /_/\\__,_/_/_/ /_/____/\\___/_/ /_/____/\\___/  ",
		"...................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
