package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/flybeeper/trackmiles/internal/airports"
	"github.com/flybeeper/trackmiles/internal/config"
	"github.com/flybeeper/trackmiles/internal/export"
	"github.com/flybeeper/trackmiles/internal/filter"
	"github.com/flybeeper/trackmiles/internal/handler"
	"github.com/flybeeper/trackmiles/internal/loader"
	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/internal/service"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

func main() {
	var (
		airportCode   = pflag.StringP("airport", "a", "", "ICAO code of the reference airport (e.g. EDDF)")
		airportCoords = pflag.String("airport-coords", "", "explicit airport position as lat,lon (overrides --airport)")
		outputDir     = pflag.StringP("out", "o", "", "output directory for exported tracks")
		formats       = pflag.StringSlice("format", []string{"kml"}, "export formats: kml, gpx")
		animated      = pflag.Bool("animated", false, "export animated KML (gx:Track) instead of a static line")
		serve         = pflag.Bool("serve", false, "serve enriched tracks over HTTP after processing")
		workers       = pflag.Int("workers", 0, "worker pool size (0 = from config)")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <positions.csv[.gz]>\n\nFlags:\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	inputPath := pflag.Arg(0)

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithFields(map[string]interface{}{
		"input":       inputPath,
		"environment": cfg.Environment,
	}).Info("Starting trackmiles")

	// Опорный аэропорт: явные координаты или справочник по ICAO коду.
	// Неизвестный код — жесткая ошибка до запуска конвейера
	airport, airportName, err := resolveAirport(*airportCode, *airportCoords)
	if err != nil {
		logger.Fatalf("Failed to resolve airport: %v", err)
	}
	logger.WithFields(map[string]interface{}{
		"airport":   airportName,
		"latitude":  airport.Latitude,
		"longitude": airport.Longitude,
	}).Info("Reference airport resolved")

	// Загружаем исходные записи позиций
	records, err := loader.NewLoader(logger).LoadFile(inputPath)
	if err != nil {
		logger.Fatalf("Failed to load input: %v", err)
	}

	// Конвейер очистки и обогащения
	poolSize := cfg.Pipeline.WorkerPoolSize
	if *workers > 0 {
		poolSize = *workers
	}
	pipeline := service.NewPipeline(airport, filterConfigFrom(cfg), poolSize, logger)

	start := time.Now()
	tracks := pipeline.Run(records)
	logger.WithFields(map[string]interface{}{
		"tracks":      len(tracks),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Pipeline completed")

	// Экспорт результатов
	outDir := cfg.Export.OutputDir
	if *outputDir != "" {
		outDir = *outputDir
	}
	if err := exportTracks(tracks, outDir, *formats, *animated || cfg.Export.KMLAnimated, logger); err != nil {
		logger.Fatalf("Export failed: %v", err)
	}

	if !*serve {
		return
	}

	// HTTP сервер поверх снимка обогащенных треков
	server := handler.NewServer(cfg, tracks, logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Ожидание сигнала завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.WithField("signal", sig.String()).Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	logger.Info("Shutdown complete")
}

// resolveAirport определяет координаты опорного аэропорта
func resolveAirport(code, coords string) (models.GeoPoint, string, error) {
	if coords != "" {
		point, err := parseCoords(coords)
		if err != nil {
			return models.GeoPoint{}, "", err
		}
		return point, coords, nil
	}

	if code == "" {
		return models.GeoPoint{}, "", fmt.Errorf("either --airport or --airport-coords is required")
	}

	airport, err := airports.Resolve(code)
	if err != nil {
		return models.GeoPoint{}, "", err
	}
	return airport.Position, airport.ICAO, nil
}

// parseCoords разбирает пару "lat,lon"
func parseCoords(s string) (models.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.GeoPoint{}, fmt.Errorf("invalid coordinates %q, expected lat,lon", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	point := models.GeoPoint{Latitude: lat, Longitude: lon}
	if err := point.Validate(); err != nil {
		return models.GeoPoint{}, err
	}
	return point, nil
}

// filterConfigFrom строит конфигурацию фильтров из конфигурации приложения
func filterConfigFrom(cfg *config.Config) *filter.FilterConfig {
	fc := filter.DefaultFilterConfig()
	fc.AirportBoxHalfWidthDeg = cfg.Pipeline.AirportBoxHalfWidthDeg
	fc.LowAltitudeM = cfg.Pipeline.LowAltitudeM
	fc.AltitudeJumpM = cfg.Pipeline.AltitudeJumpM
	fc.IQRMultiplier = cfg.Pipeline.IQRMultiplier
	fc.MinQuartilePoints = cfg.Pipeline.MinQuartilePoints
	return fc
}

// exportTracks записывает треки в запрошенных форматах
func exportTracks(tracks []*models.Track, outDir string, formats []string, animated bool, logger *utils.Logger) error {
	exporter := export.NewExporter(outDir, logger)

	for _, format := range formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "kml":
			if animated {
				if err := exporter.WriteAnimatedKML(tracks); err != nil {
					return err
				}
			} else {
				if err := exporter.WriteKML(tracks); err != nil {
					return err
				}
			}
		case "gpx":
			if err := exporter.WriteGPX(tracks); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown export format %q", format)
		}
	}

	return nil
}
