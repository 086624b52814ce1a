package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/flagorder"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Flag image tooling",
}

var (
	flagsDir    string
	flagsOutput string
)

var flagsOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Generate the Dart flag sprite order from a flag directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("flags"); err != nil {
			return err
		}

		dir := flagsDir
		if dir == "" {
			dir = cfg.Paths.FlagsDir
		}
		out := flagsOutput
		if out == "" {
			out = cfg.Paths.DartOutput
		}

		n, err := flagorder.Generate(dir, out)
		if err != nil {
			return err
		}

		zap.L().Info("flag order written", zap.String("dir", dir), zap.String("output", out), zap.Int("codes", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%s generated with %d entries\n", out, n)
		return nil
	},
}

func init() {
	flagsOrderCmd.Flags().StringVar(&flagsDir, "dir", "", "flag image directory (default: paths.flags_dir)")
	flagsOrderCmd.Flags().StringVar(&flagsOutput, "output", "", "Dart output file (default: paths.dart_output)")
	flagsCmd.AddCommand(flagsOrderCmd)
	rootCmd.AddCommand(flagsCmd)
}
