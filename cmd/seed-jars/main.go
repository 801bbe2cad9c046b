// Command seed-jars bootstraps the classic six-jar budget for an owner:
// necessities 55%, financial freedom 10%, long-term savings 10%,
// education 10%, play 10%, give 5%. It goes through the normal create
// path, so it only works on an owner with no jars yet.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eshaffer321/jarbudget-backend/internal/application/service"
	"github.com/eshaffer321/jarbudget-backend/internal/infrastructure/config"
	"github.com/eshaffer321/jarbudget-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/jarbudget-backend/internal/infrastructure/storage"
)

type starterJar struct {
	name        string
	description string
	percent     float64
}

var starterSet = []starterJar{
	{"Necessities", "Rent, bills, groceries, transport", 0.55},
	{"Financial Freedom", "Investments and passive income", 0.10},
	{"Long-Term Savings", "Big purchases and emergencies", 0.10},
	{"Education", "Books, courses, growth", 0.10},
	{"Play", "Guilt-free fun money", 0.10},
	{"Give", "Charity and gifts", 0.05},
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	owner := flag.String("owner", "", "owner to seed jars for (required)")
	income := flag.Float64("income", 0, "total monthly income to store (optional)")
	flag.Parse()

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-jars -owner <owner> [-income <amount>]")
		os.Exit(2)
	}

	cfg := config.LoadOrEnvWithPath(*configPath)
	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "seed")

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to open storage", "path", cfg.Storage.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	jars := service.NewJarService(repo, logger)

	if *income > 0 {
		if err := jars.SetTotalIncome(*owner, *income); err != nil {
			logger.Error("failed to set income", "owner", *owner, "error", err)
			os.Exit(1)
		}
	}

	req := service.CreateRequest{Confidence: 1.0}
	for _, s := range starterSet {
		p := s.percent
		req.Jars = append(req.Jars, service.CreateJarRequest{
			Name:        s.name,
			Description: s.description,
			Percent:     &p,
		})
	}

	result, err := jars.CreateJars(*owner, req)
	if err != nil {
		logger.Error("failed to seed jars", "owner", *owner, "error", err)
		os.Exit(1)
	}

	logger.Info("seeded starter jars", "owner", *owner, "jars", len(result.Jars))
	for _, j := range result.Jars {
		fmt.Printf("%-20s %5.1f%%  $%.2f\n", j.Name, j.Percent*100, j.Amount)
	}
}
