package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/anime-shed/cccd-inspector-go/internal/factory"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

var qualityCmd = &cobra.Command{
	Use:   "quality image...",
	Short: "Report blur, exposure and resolution of captures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gate := factory.NewComponentFactory(cfg).CreateGate()
		reports := make(map[string]models.QualityReport, len(args))
		for _, path := range args {
			img, err := openImage(path)
			if err != nil {
				return err
			}
			reports[path] = gate.Inspect(img)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	},
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}
