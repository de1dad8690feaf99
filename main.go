package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"x-lotto/config"
	"x-lotto/database"
	"x-lotto/logger"
	"x-lotto/lottery"
	"x-lotto/web"
	"x-lotto/web/service"
)

func loadSettings() *config.Settings {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}
	settings, err := config.LoadSettings(config.GetSettingsPath())
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}
	return settings
}

func initLogger() {
	level := config.GetLogLevel()
	logger.InitLogger(level)
	logger.Debug("log level:", level)
}

func openState(settings *config.Settings) *lottery.AppState {
	if err := database.InitDB(config.GetDBPath()); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	state, err := lottery.NewAppState(database.KVStore{}, lottery.Options{
		MaxUniverse:     settings.Draw.MaxUniverse,
		DefaultUniverse: settings.Draw.DefaultUniverse,
		Retention:       settings.Draw.Retention,
	})
	if err != nil {
		log.Fatalf("Error creating draw state: %v", err)
	}
	if err := state.Load(); err != nil {
		log.Fatalf("Error loading draw state: %v", err)
	}
	return state
}

func runWebServer() {
	log.Printf("Starting %v %v", config.GetName(), config.GetVersion())

	settings := loadSettings()
	initLogger()
	state := openState(settings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	drawService := service.NewDrawService(ctx, state, service.PacingFromConfig(settings.Draw))

	server := web.NewServer(settings, database.KVStore{}, drawService)
	if err := server.Start(); err != nil {
		log.Fatalf("Error starting web server: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")

			if err := server.Stop(); err != nil {
				logger.Debug("Error stopping web server:", err)
			}
			if err := drawService.Save(); err != nil {
				logger.Warning("Error saving draw state:", err)
			}

			server = web.NewServer(settings, database.KVStore{}, drawService)
			if err := server.Start(); err != nil {
				log.Fatalf("Error restarting web server: %v", err)
			}
			log.Println("Web server restarted successfully.")
		default:
			logger.Info("Shutting down...")
			if err := server.Stop(); err != nil {
				logger.Warning("Error stopping web server:", err)
			}
			if err := drawService.Stop(); err != nil {
				logger.Error("Error saving draw state:", err)
			}
			if err := database.Checkpoint(); err != nil {
				logger.Warning("Error checkpointing database:", err)
			}
			if err := database.CloseDB(); err != nil {
				logger.Warning("Error closing database:", err)
			}
			return
		}
	}
}

func showHistory() {
	settings := loadSettings()
	state := openState(settings)
	defer database.CloseDB()

	snap := state.Snapshot()
	fmt.Printf("universe: %d, drawn: %v, remaining: %d\n",
		snap.Session.UniverseSize, snap.Session.DrawnNumbers, snap.Remaining)
	if len(snap.History) == 0 {
		fmt.Println("no history")
		return
	}
	for i, e := range snap.History {
		fmt.Printf("%2d. %s\n", i+1, service.EntryText(e))
	}
}

func clearData() {
	settings := loadSettings()
	state := openState(settings)
	defer database.CloseDB()

	if err := state.ClearAll(); err != nil {
		fmt.Println("clear data failed:", err)
		return
	}
	fmt.Println("all draw data cleared")
}

func main() {
	if len(os.Args) < 2 {
		runWebServer()
		return
	}

	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "show version")

	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)
	var confirm bool
	clearCmd.BoolVar(&confirm, "yes", false, "confirm removing the current draw and the history")

	oldUsage := flag.Usage
	flag.Usage = func() {
		oldUsage()
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("    run            run web panel")
		fmt.Println("    history        print the current draw and the history")
		fmt.Println("    clear -yes     remove all stored draw data")
	}

	flag.Parse()
	if showVersion {
		fmt.Println(config.GetVersion())
		return
	}

	switch os.Args[1] {
	case "run":
		if err := runCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		runWebServer()
	case "history":
		if err := historyCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		showHistory()
	case "clear":
		if err := clearCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		if !confirm {
			fmt.Println("refusing to clear data without -yes")
			return
		}
		clearData()
	default:
		fmt.Println("Invalid subcommands")
		fmt.Println()
		runCmd.Usage()
		fmt.Println()
		historyCmd.Usage()
		fmt.Println()
		clearCmd.Usage()
	}
}
