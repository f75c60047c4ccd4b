package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/studyfocus/internal/browser"
	"github.com/sadopc/studyfocus/internal/logging"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/tui"
)

func main() {
	log := logging.New("main")
	defer log.Close()

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	b, err := browser.Launch()
	if err != nil {
		log.Errorf("browser launch: %v", err)
		fmt.Fprintf(os.Stderr, "error launching browser: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	log.Infof("started, db=%s", dbPath)

	app := tui.NewApp(s, b, log)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
