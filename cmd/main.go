package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricepulse/glitchradar/internal/api/validator"
	"github.com/pricepulse/glitchradar/internal/config"
	"github.com/pricepulse/glitchradar/internal/detector"
	"github.com/pricepulse/glitchradar/internal/store"
	"github.com/pricepulse/glitchradar/internal/thresholds"
	"github.com/pricepulse/glitchradar/models"
)

// Reads price observations as JSON lines from stdin (the scraper's output
// contract), runs each through the anomaly detector, sends flagged anomalies
// to the AI validator, and persists accepted glitches.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config failed")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	registry := thresholds.NewRegistry()
	if cfg.ThresholdsFile != "" {
		registry, err = thresholds.NewRegistryFromFile(cfg.ThresholdsFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ThresholdsFile).Msg("loading thresholds failed")
		}
	}
	det := detector.New(registry)

	var validatorClient *validator.Client
	if cfg.ValidatorURL != "" {
		validatorClient = validator.NewClient(cfg.ValidatorURL, time.Duration(cfg.RequestTimeout)*time.Second)
	}

	var glitchStore *store.GlitchStore
	if cfg.DBHost != "" {
		glitchStore, err = store.NewGlitchStore(store.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to database failed")
		}
		defer glitchStore.Close()
	}

	var historyStore *store.HistoryStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		historyStore = store.NewHistoryStore(client, int64(cfg.HistoryLimit))
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var scanned, flagged, confirmed int
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var obs models.PriceObservation
		if err := json.Unmarshal(line, &obs); err != nil {
			log.Warn().Err(err).Msg("skipping malformed observation")
			continue
		}
		scanned++

		if len(obs.History) == 0 && historyStore != nil && obs.ProductID != "" {
			history, err := historyStore.History(ctx, obs.ProductID)
			if err != nil {
				log.Warn().Err(err).Str("product_id", obs.ProductID).Msg("history fetch failed")
			} else {
				obs.History = history
			}
		}

		result := det.Detect(obs.CurrentPrice, obs.ReferencePrice, obs.History, detector.Options{
			Category:  obs.Category,
			Timestamp: obs.ObservedAt,
		})

		out, _ := json.Marshal(result)
		fmt.Println(string(out))

		if historyStore != nil && obs.ProductID != "" {
			if err := historyStore.Push(ctx, obs.ProductID, obs.CurrentPrice); err != nil {
				log.Warn().Err(err).Str("product_id", obs.ProductID).Msg("history push failed")
			}
		}

		if !result.IsAnomaly {
			continue
		}
		flagged++

		if validatorClient == nil {
			continue
		}
		verdict, err := validatorClient.Validate(ctx, models.ValidationRequest{
			Title:          obs.Title,
			Retailer:       obs.Retailer,
			URL:            obs.URL,
			CurrentPrice:   obs.CurrentPrice,
			ReferencePrice: obs.ReferencePrice,
			Detection:      result,
		})
		if err != nil {
			log.Error().Err(err).Str("product_id", obs.ProductID).Msg("validation failed")
			continue
		}
		if !verdict.Accepted {
			continue
		}
		confirmed++

		if glitchStore == nil {
			continue
		}
		glitch := models.ValidatedGlitch{
			Title:         obs.Title,
			Retailer:      obs.Retailer,
			URL:           obs.URL,
			CurrentPrice:  obs.CurrentPrice,
			OriginalPrice: obs.ReferencePrice,
			ProfitMargin:  obs.ReferencePrice - obs.CurrentPrice,
			Confidence:    verdict.Confidence,
			Reasoning:     verdict.Reasoning,
			ValidatedAt:   time.Now(),
		}
		if _, err := glitchStore.SaveValidated(ctx, glitch); err != nil {
			log.Error().Err(err).Str("product_id", obs.ProductID).Msg("saving glitch failed")
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("reading observations failed")
	}

	log.Info().Int("scanned", scanned).Int("flagged", flagged).Int("confirmed", confirmed).Msg("scan complete")
}
