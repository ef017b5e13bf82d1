package cmd

import (
	"fmt"

	"github.com/cyfeng16/depth-estimator/internal/config"
	"github.com/cyfeng16/depth-estimator/internal/services/modelstore"
	"github.com/cyfeng16/depth-estimator/pkg/logger"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "download [model-id ...]",
	Short: "Download model snapshots into the local cache",
	Long:  "Downloads the given models into the local cache and exits. With no arguments the configured default and warmup models are fetched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()

		l, err := logger.NewLogger(cfg)
		if err != nil {
			return err
		}

		modelIDs := args
		if len(modelIDs) == 0 {
			modelIDs = append([]string{cfg.ModelID}, cfg.WarmupModels...)
		}

		manager := modelstore.NewManager(cfg, l)
		if err := manager.DownloadAll(cmd.Context(), modelIDs); err != nil {
			return err
		}

		fmt.Println("Download complete")
		return nil
	},
}
