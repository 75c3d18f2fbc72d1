package main

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/anime-shed/cccd-inspector-go/internal/enhance"
	"github.com/anime-shed/cccd-inspector-go/internal/factory"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance in.png out.png",
	Short: "Write the raster the recognizer would see",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			cfg.Enhance.Mode = mode
		}

		img, err := openImage(args[0])
		if err != nil {
			return err
		}
		res, err := enhance.NewEnhancer(factory.NewComponentFactory(cfg).EnhanceOptions()).Enhance(img)
		if err != nil {
			return err
		}
		if err := imaging.Save(res.Image, args[1]); err != nil {
			return fmt.Errorf("save %s: %w", args[1], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", args[1], res.Stages)
		return nil
	},
}

func init() {
	enhanceCmd.Flags().String("mode", "", "full or lightweight, overrides --enhance-mode")
	rootCmd.AddCommand(enhanceCmd)
}
