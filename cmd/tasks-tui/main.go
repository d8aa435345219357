package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/client"
	"taskboard/internal/sync"
	"taskboard/internal/tui"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "task API base URL")
	flag.Parse()

	api, err := client.New(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "client:", err)
		os.Exit(1)
	}

	engine := sync.NewEngine(api)
	program := tea.NewProgram(tui.New(api, engine), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tui:", err)
		os.Exit(1)
	}
}
