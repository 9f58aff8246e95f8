// Command export produces a bookings xlsx from the command line, replaying
// the same backend export endpoint the bot uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"mediadesk/internal/backend"
	"mediadesk/internal/config"
	"mediadesk/internal/export"
	"mediadesk/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	status := flag.String("status", "", "booking status filter (empty for all)")
	username := flag.String("user", "", "username filter")
	service := flag.String("service", "", "service filter")
	location := flag.String("location", "", "location filter")
	outDir := flag.String("out", "", "output directory (defaults to the configured export path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := backend.New(
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		cfg.Backend.RateLimitRPS,
		cfg.Backend.RateLimitBurst,
	)

	bookings, err := client.ExportBookings(ctx, backend.BookingQuery{
		Status:   *status,
		Username: *username,
		Service:  *service,
		Location: *location,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Export fetch failed")
	}

	dir := *outDir
	if dir == "" {
		dir = cfg.Exports.Path
	}

	path, err := export.WriteFile(dir, bookings)
	if err != nil {
		logger.Fatal().Err(err).Msg("Export write failed")
	}

	logger.Info().Str("path", path).Int("rows", len(bookings)).Msg("Export written")
	fmt.Println(path)
}
