package main

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/anime-shed/cccd-inspector-go/internal/factory"
	"github.com/anime-shed/cccd-inspector-go/internal/logger"
	"github.com/anime-shed/cccd-inspector-go/internal/observer"
	"github.com/anime-shed/cccd-inspector-go/internal/pipeline"
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan --front front.jpg [--back back.jpg]",
	Short: "Extract identity fields from card images",
	Long: `Scan runs the full pipeline on one card, or on several when --front is
repeated. The n-th --back belongs to the n-th --front.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSlice("front", nil, "front side image (repeat for a batch)")
	scanCmd.Flags().StringSlice("back", nil, "back side image, matched to --front by position")
	scanCmd.Flags().Bool("number-only", false, "read only the 12 digit number")
	scanCmd.Flags().Bool("json", false, "print results as JSON")
	_ = scanCmd.MarkFlagRequired("front")

	rootCmd.AddCommand(scanCmd)
}

// scanOutput is one printed result.
type scanOutput struct {
	File   string                 `json:"file"`
	Result *models.PipelineResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	fronts, _ := cmd.Flags().GetStringSlice("front")
	backs, _ := cmd.Flags().GetStringSlice("back")
	numberOnly, _ := cmd.Flags().GetBool("number-only")
	asJSON, _ := cmd.Flags().GetBool("json")
	if len(backs) > len(fronts) {
		return fmt.Errorf("got %d --back images for %d --front images", len(backs), len(fronts))
	}

	reqs, err := buildRequests(fronts, backs, numberOnly)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f := factory.NewComponentFactory(cfg)
	engine, err := f.CreateEngine()
	if err != nil {
		return err
	}
	events := observer.NewEventPublisher(observer.NewLoggingObserver(logger.Logger))
	defer events.Flush()
	pl := pipeline.New(engine, f.PipelineOptions(), pipeline.WithPublisher(events))

	outputs := make([]scanOutput, len(reqs))
	for i, res := range pl.RunBatch(cmd.Context(), reqs) {
		outputs[i] = scanOutput{File: fronts[i], Result: res.Result}
		if res.Err != nil {
			outputs[i].Error = res.Err.Error()
		}
	}
	return printScan(cmd.OutOrStdout(), outputs, asJSON)
}

func buildRequests(fronts, backs []string, numberOnly bool) ([]pipeline.Request, error) {
	reqs := make([]pipeline.Request, len(fronts))
	for i, path := range fronts {
		front, err := openImage(path)
		if err != nil {
			return nil, err
		}
		reqs[i] = pipeline.Request{Front: front, NumberOnly: numberOnly}
		if i < len(backs) && backs[i] != "" && !numberOnly {
			if reqs[i].Back, err = openImage(backs[i]); err != nil {
				return nil, err
			}
		}
	}
	return reqs, nil
}

func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

func printScan(w io.Writer, outputs []scanOutput, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(outputs) == 1 && outputs[0].Error == "" {
			return enc.Encode(outputs[0].Result)
		}
		return enc.Encode(outputs)
	}

	failed := 0
	for _, out := range outputs {
		fmt.Fprintf(w, "== %s\n", out.File)
		if out.Error != "" {
			failed++
			fmt.Fprintf(w, "error: %s\n", out.Error)
			continue
		}
		res := out.Result
		for _, name := range models.AllFields {
			if v := res.ExtractedData.Get(name); v != "" {
				fmt.Fprintf(w, "%-20s %s\n", name, v)
			}
		}
		fmt.Fprintf(w, "%-20s %.2f\n", "confidence", res.ConfidenceScore)
		fmt.Fprintf(w, "%-20s %t\n", "format_valid", res.FormatValid)
		fmt.Fprintf(w, "%-20s %s\n", "source", res.Source)
		if len(res.MissingFields) > 0 {
			names := make([]string, len(res.MissingFields))
			for i, n := range res.MissingFields {
				names[i] = string(n)
			}
			fmt.Fprintf(w, "%-20s %s\n", "missing", strings.Join(names, ", "))
		}
		if v := res.Validation; v != nil {
			for _, msg := range v.ValidationErrors {
				fmt.Fprintf(w, "warning: %s\n", msg)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(outputs))
	}
	return nil
}
