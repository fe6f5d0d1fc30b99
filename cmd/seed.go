package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifeflow/bloodlink/config"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/infra/logger"
	"github.com/lifeflow/bloodlink/infra/store/sqlite"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load donors from a JSON file into the registry",
	RunE:  seedDonors,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "donors.json", "donor list to load")
	rootCmd.AddCommand(seedCmd)
}

func seedDonors(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read donors: %w", err)
	}
	var donors []model.Donor
	if err := json.Unmarshal(data, &donors); err != nil {
		return fmt.Errorf("parse donors: %w", err)
	}
	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if err := sqlite.NewDonorStore(db).Seed(cmd.Context(), donors); err != nil {
		return fmt.Errorf("seed donors: %w", err)
	}
	logger.New("seed-command").Infof("loaded %d donors from %s", len(donors), seedFile)
	return nil
}
