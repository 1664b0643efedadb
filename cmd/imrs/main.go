package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/itsiBahar/IMRS-V2/internal/api"
	"github.com/itsiBahar/IMRS-V2/internal/auth"
	"github.com/itsiBahar/IMRS-V2/internal/config"
	"github.com/itsiBahar/IMRS-V2/internal/domain"
	"github.com/itsiBahar/IMRS-V2/internal/log"
	"github.com/itsiBahar/IMRS-V2/internal/poster"
	"github.com/itsiBahar/IMRS-V2/internal/service"
	"github.com/itsiBahar/IMRS-V2/internal/store"
	"github.com/itsiBahar/IMRS-V2/internal/tui"
	"github.com/itsiBahar/IMRS-V2/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	// Handle flags
	var showVersion bool
	var clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete the local poster cache and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("imrs %s\n", Version)
		return
	}

	if clearCache {
		if err := runClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runClearCache removes the on-disk poster cache
func runClearCache() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ClearCache(cfg); err != nil {
		return err
	}
	fmt.Println("✓ Local cache cleared")
	return nil
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting imrs", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	// Create backend and identity clients
	backend := api.NewClient(cfg.Backend.URL, logger)
	identity := auth.NewClient(cfg.Auth.URL, cfg.Auth.APIKey, logger)
	posterClient := poster.NewClient(cfg.Poster.URL, cfg.Poster.APIKey, cfg.Poster.ImageURL, logger)

	// Open the local poster store; a failed open degrades to memory-only
	posterStore, err := store.NewPosterStore(cfg.Cache.Dir)
	if err != nil {
		logger.Warn("poster store unavailable, caching in memory only", "error", err)
		posterStore, _ = store.NewPosterStore("")
	}
	defer posterStore.Close()

	// Create services
	sessions := service.NewSessionManager(identity, logger)
	gate := service.NewProgressGate(backend, cfg.Onboarding.Threshold, logger)
	feeds := service.NewFeedAggregator(backend, logger)
	actions := service.NewActionReconciler(backend, sessions, logger)
	searchSvc := service.NewSearchService(backend, logger)
	posters := service.NewPosterService(posterClient, posterStore, logger)
	profiles := service.NewProfileService(backend, sessions, logger)
	health := service.NewHealthMonitor(backend, logger)

	// Session-scoped caches go with the session
	sessions.Subscribe(func(change service.SessionChange) {
		if change.Event == domain.EventSignedOut {
			gate.Reset()
			feeds.Clear()
			searchSvc.ClearIndexes()
			posters.Clear()
		}
	})

	// Create TUI model
	model := tui.NewModel(sessions, gate, feeds, actions, searchSvc, posters, profiles, health)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to IMRS!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// Loop until the backend answers a ping
	for {
		backendURL, err := promptLine(reader, "Enter your recommendation backend URL (e.g., http://localhost:8000): ")
		if err != nil {
			return err
		}
		if backendURL == "" {
			fmt.Println("Backend URL cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		if err := pingBackendWithSpinner(backendURL); err != nil {
			fmt.Printf("\n✗ Could not reach the backend: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}

		cfg.Backend.URL = backendURL
		break
	}

	authURL, err := promptLine(reader, "Enter your identity provider URL (e.g., https://myproject.supabase.co): ")
	if err != nil {
		return err
	}
	cfg.Auth.URL = authURL

	authKey, err := promptSecret("Enter the identity provider anon key: ")
	if err != nil {
		return err
	}
	cfg.Auth.APIKey = authKey

	posterKey, err := promptSecret("Enter a TMDB API key for poster art (optional, press enter to skip): ")
	if err != nil {
		return err
	}
	cfg.Poster.APIKey = posterKey

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run imrs again to start the application.")

	return nil
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptSecret reads a value without echoing it to the terminal
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// pingBackendWithSpinner checks backend reachability with a visual spinner
func pingBackendWithSpinner(backendURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		client := api.NewClient(backendURL, log.NullLogger())
		resultCh <- client.Ping(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s Checking backend...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ Backend is reachable")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking backend...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("backend check timed out")
		}
	}
}
