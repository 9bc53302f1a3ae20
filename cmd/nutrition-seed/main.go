// Command nutrition-seed writes the baseline food dataset into the local
// store. Seeding is idempotent: rows are keyed by slug and upserted, so the
// command can run on every deploy. With --warm and a name list it also
// pre-fetches additional foods through the quota-gated lookup path.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/nblkmal/nutrition-hub/pkg/logging"
	"github.com/nblkmal/nutrition-hub/pkg/lookup"
	"github.com/nblkmal/nutrition-hub/pkg/ninjas"
	"github.com/nblkmal/nutrition-hub/pkg/quota"
	"github.com/nblkmal/nutrition-hub/pkg/slug"
	"github.com/nblkmal/nutrition-hub/pkg/stats"
	"github.com/nblkmal/nutrition-hub/pkg/storage"
	"github.com/nblkmal/nutrition-hub/pkg/warm"
)

// calorieTolerance is the accepted relative deviation between declared
// calories and the 4/4/9 macro estimate. Fiber and rounding make a perfect
// match impossible, so deviations only warn.
const calorieTolerance = 0.25

func main() {
	var (
		reset    = flag.Bool("reset", false, "delete previously seeded rows before seeding")
		warmList = flag.String("warm", "", "comma-separated food names to pre-fetch after seeding")
	)
	flag.Parse()

	_ = godotenv.Load()
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
		Output: os.Stderr,
	})

	if err := run(*reset, *warmList); err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}
}

func run(reset bool, warmList string) error {
	dbPath := getEnv("DB_PATH", "data/nutrition-hub.db")
	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store at %s: %w", dbPath, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if reset {
		deleted, err := store.DeleteFoodsBySource(ctx, storage.SourceSeed)
		if err != nil {
			return fmt.Errorf("reset seed rows: %w", err)
		}
		log.Info().Int64("deleted", deleted).Msg("Removed previously seeded rows")
	}

	if err := seed(ctx, store); err != nil {
		return err
	}

	if warmList != "" {
		if err := warmNames(ctx, store, splitNames(warmList)); err != nil {
			return err
		}
	}

	total, err := store.CountFoods(ctx)
	if err != nil {
		return fmt.Errorf("count foods: %w", err)
	}
	log.Info().Int64("total_foods", total).Msg("Seed complete")
	return nil
}

func seed(ctx context.Context, store *storage.Store) error {
	for _, food := range seedFoods {
		food.Slug = slug.Make(food.Name)
		food.ServingSizeG = storage.DefaultServingSizeG
		food.DataSource = storage.SourceSeed

		if dev := calorieDeviation(food); dev > calorieTolerance {
			log.Warn().
				Str("name", food.Name).
				Float64("declared", food.Calories).
				Float64("deviation", dev).
				Msg("Declared calories deviate from macro estimate")
		}

		if err := store.UpsertFood(ctx, &food); err != nil {
			return fmt.Errorf("seed %q: %w", food.Name, err)
		}
	}
	log.Info().Int("seeded", len(seedFoods)).Msg("Seeded baseline foods")
	return nil
}

// calorieDeviation returns the relative gap between declared calories and
// the 4 kcal/g protein, 4 kcal/g carbohydrate, 9 kcal/g fat estimate.
func calorieDeviation(food storage.Food) float64 {
	if food.Calories == 0 {
		return 0
	}
	estimate := 4*food.ProteinG + 4*food.CarbohydratesTotalG + 9*food.FatTotalG
	return math.Abs(estimate-food.Calories) / food.Calories
}

func warmNames(ctx context.Context, store *storage.Store, names []string) error {
	apiKey := os.Getenv("CALORIENINJAS_API_KEY")
	client, err := ninjas.New(ninjas.DefaultConfig(apiKey))
	if err != nil {
		return fmt.Errorf("create nutrition client: %w", err)
	}

	ledger := quota.NewLedger(store, quota.DefaultLimits(), logging.NewLogger("quota"))
	recorder := stats.NewRecorder(store, logging.NewLogger("stats"))
	svc := lookup.NewService(store, client, ledger, recorder, lookup.Config{})

	warmer := warm.NewWarmer(svc, warm.DefaultConfig())
	summary, err := warmer.Run(ctx, names)
	if err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}
	log.Info().
		Int("found", summary.Found).
		Int("not_found", summary.NotFound).
		Int("unavailable", summary.Unavailable).
		Int("failed", summary.Failed).
		Msg("Warm run finished")
	return nil
}

func splitNames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
