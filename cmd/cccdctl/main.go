// Package main is the cccdctl command line: scan cards, inspect capture quality and
// preview enhancement without running the HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anime-shed/cccd-inspector-go/internal/config"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "cccdctl",
	Short:   "Read Vietnamese citizen identity cards from images",
	Version: version,
	Long: `cccdctl runs the CCCD recognition pipeline locally. Settings come from the
same environment variables as the API server; flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Configure(viper.GetString(config.KeyLogLevel), cmd.ErrOrStderr())
		return nil
	},
}

// persistent flag name -> configuration key
var flagKeys = map[string]string{
	"log-level":       config.KeyLogLevel,
	"ocr-engine":      config.KeyOCREngine,
	"ocr-language":    config.KeyOCRLanguage,
	"digit-language":  config.KeyOCRDigitLanguage,
	"tessdata-prefix": config.KeyTessdataPrefix,
	"enhance-mode":    config.KeyEnhanceMode,
	"enhance-scale":   config.KeyEnhanceScale,
	"clip-limit":      config.KeyCLAHEClipLimit,
	"tile-size":       config.KeyCLAHETileSize,
	"strict-quality":  config.KeyStrictQuality,
	"corner-check":    config.KeyCornerCheck,
	"qr":              config.KeyUseQRCode,
	"confidence-mode": config.KeyConfidenceMode,
	"workers":         config.KeyWorkers,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("ocr-engine", "tesseract", "recognition engine")
	flags.String("ocr-language", "vie", "language for general text")
	flags.String("digit-language", "eng", "language for the number-only flow")
	flags.String("tessdata-prefix", "", "directory holding traineddata files")
	flags.String("enhance-mode", "full", "enhancement path (full or lightweight)")
	flags.Float64("enhance-scale", 3, "upscale factor")
	flags.Float64("clip-limit", 2, "CLAHE clip limit")
	flags.Int("tile-size", 8, "CLAHE tile size in pixels")
	flags.Bool("strict-quality", false, "stop when a capture fails the quality gate")
	flags.Bool("corner-check", false, "flag captures whose corners run past the frame")
	flags.Bool("qr", false, "decode the card QR code as an extraction source")
	flags.String("confidence-mode", "fields", "confidence policy (fields or engine)")
	flags.Int("workers", 0, "batch concurrency, 0 means one per CPU")

	for name, key := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	viper.AutomaticEnv()
}

// loadConfig resolves flags over environment over defaults.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
