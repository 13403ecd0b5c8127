package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/liuwen/deepchat/internal/client"
	"github.com/liuwen/deepchat/internal/config"
	chatui "github.com/liuwen/deepchat/internal/ui/chat"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	api := client.NewAPI(cfg.ServerURL, cfg.Token)
	set := client.NewConversationSet()
	ctrl := client.NewController(set, api, cfg.Token != "", cfg.RevealInterval)

	program := tea.NewProgram(chatui.New(set, ctrl, api), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running chat: %v\n", err)
		os.Exit(1)
	}
}
