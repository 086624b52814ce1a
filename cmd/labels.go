package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/geofile"
	"github.com/mapmania/geoprep/internal/label"
)

var (
	labelsInput  string
	labelsOutput string
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Add label leader lines and markers for small countries",
	Long:  "Reads a country FeatureCollection and appends, for every country with an offset class, a leader line from its centroid to the label position and a square marker there.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("labels"); err != nil {
			return err
		}

		classifier, err := label.ParseClassifier(cfg.Labels.Classes, cfg.Labels.Offsets)
		if err != nil {
			return eris.Wrap(err, "labels: build classifier")
		}

		out := labelsOutput
		if out == "" {
			out = labelsOutputPath(labelsInput)
		}
		if samePath(out, labelsInput) {
			return eris.Errorf("labels: output %s is the input file", out)
		}

		fc, err := geofile.Load(labelsInput)
		if err != nil {
			return err
		}

		synth := label.NewSynthesizer(classifier, cfg.Labels.HalfWidth, cfg.Labels.CodeKey)
		enriched, derived := synth.Enrich(fc)

		if err := geofile.Save(out, enriched); err != nil {
			return err
		}

		zap.L().Info("labels written",
			zap.String("input", labelsInput),
			zap.String("output", out),
			zap.Int("classified", classifier.Len()),
			zap.Int("derived", derived),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "%d derived features written to %s\n", derived, out)
		return nil
	},
}

// labelsSuffix names the enriched copy written next to the input.
const labelsSuffix = "_with_labels.geojson"

func labelsOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + labelsSuffix
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func init() {
	labelsCmd.Flags().StringVar(&labelsInput, "input", "", "country FeatureCollection (required)")
	labelsCmd.Flags().StringVar(&labelsOutput, "output", "", "enriched output path (default: <input>_with_labels.geojson)")
	_ = labelsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(labelsCmd)
}
