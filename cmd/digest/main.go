package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricepulse/glitchradar/internal/config"
	"github.com/pricepulse/glitchradar/internal/digest"
	"github.com/pricepulse/glitchradar/internal/ranker"
	"github.com/pricepulse/glitchradar/internal/store"
	"github.com/pricepulse/glitchradar/models"
)

// Prints the ranked digest a subscription tier may see right now.
// Usage: digest [tier] [limit]
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config failed")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	tier := models.TierFree
	if len(os.Args) > 1 {
		tier = models.SubscriptionTier(os.Args[1])
	}
	limit := 10
	if len(os.Args) > 2 {
		if v, err := strconv.Atoi(os.Args[2]); err == nil {
			limit = v
		}
	}

	glitchStore, err := store.NewGlitchStore(store.ConnectionParams{
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

	builder := digest.NewBuilder(glitchStore, ranker.New(cfg.TierDelays()), cfg.RankOverfetch)

	entries, err := builder.Build(context.Background(), tier, limit, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("building digest failed")
	}

	if len(entries) == 0 {
		fmt.Printf("No glitches available for tier %q right now.\n", tier)
		return
	}

	fmt.Printf("Top %d glitches for tier %q:\n", len(entries), tier)
	for _, e := range entries {
		fmt.Printf("%2d. [%.1f] %s @ %s — $%.2f (was $%.2f)\n",
			e.Position, e.Rank, e.Title, e.Retailer, e.CurrentPrice, e.OriginalPrice)
		if e.URL != "" {
			fmt.Printf("      %s\n", e.URL)
		}
	}
}
