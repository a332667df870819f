package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/nilbx/sponsorhub/internal/api"
	"github.com/nilbx/sponsorhub/internal/config"
	"github.com/nilbx/sponsorhub/internal/server"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var quiet = flag.Bool("quiet", false, "Disable logging output")
	flag.Parse()

	if *quiet {
		log.SetOutput(io.Discard)
	}

	if *showVersion {
		log.Printf("SponsorHub NIL Platform\n")
		log.Printf("Version: %s\n", Version)
		log.Printf("Commit: %s\n", CommitHash)
		log.Printf("Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		log.Printf("SponsorHub NIL Platform\n\n")
		log.Printf("Usage: %s [options]\n\n", os.Args[0])
		log.Printf("Options:\n")
		log.Printf("  --version    Show version information\n")
		log.Printf("  --help       Show this help message\n")
		log.Printf("  --quiet      Disable logging output\n\n")
		log.Printf("Description:\n")
		log.Printf("  NIL athlete sponsorship platform: fee calculation, the\n")
		log.Printf("  sponsorship ledger, on-chain escrow tasks, and NFT metadata\n")
		log.Printf("  pinning behind one HTTP API.\n\n")
		log.Printf("Configuration is read from the environment (.env supported).\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	store, err := server.InitializeStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize ledger store:", err)
	}

	svcs, err := server.InitializeServices(cfg, store)
	if err != nil {
		store.Close()
		log.Fatal("Failed to initialize services:", err)
	}
	defer svcs.Close(store)

	apiServer := api.NewAPIServer(api.ServerDeps{
		Ledger:      svcs.Ledger,
		Fees:        svcs.Fees,
		Evm:         svcs.Evm,
		Pinning:     svcs.Pinning,
		Integration: svcs.Integration,
		AuthSecret:  cfg.AuthSecret,
	})

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatal("Invalid PORT:", err)
	}
	port, err = apiServer.Start(port)
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}
	log.Printf("API server started on port %d\n", port)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down...")

	if err := apiServer.Shutdown(); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}

	log.Println("Server shut down successfully")
}
