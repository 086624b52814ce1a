package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/catalog"
	"github.com/mapmania/geoprep/internal/geofile"
	"github.com/mapmania/geoprep/internal/outline"
)

var (
	outlineContinent string
	outlineInput     string
	outlineOutput    string
	outlineFGB       string
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Compute the outer boundary of a continent",
	Long:  "Unions every polygon of a continent boundary file and writes the exterior rings as LineString features, optionally also as FlatGeobuf.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("outline"); err != nil {
			return err
		}

		in := outlineInput
		if in == "" {
			if outlineContinent == "" {
				return eris.New("outline: --input or --continent is required")
			}
			in = catalog.MapFile(cfg.Paths.MapsDir, outlineContinent)
		}
		out := outlineOutput
		if out == "" {
			out = strings.TrimSuffix(in, filepath.Ext(in)) + catalog.OutlineSuffix
		}

		fc, err := geofile.Load(in)
		if err != nil {
			return err
		}

		rings, err := outline.Reduce(outline.Geometries(fc))
		if err != nil {
			return eris.Wrapf(err, "outline: %s", in)
		}

		if err := geofile.Save(out, outline.Collection(rings)); err != nil {
			return err
		}

		if outlineFGB != "" {
			if err := writeFGB(outlineFGB, layerName(out), rings); err != nil {
				return err
			}
		}

		zap.L().Info("outline written",
			zap.String("input", in),
			zap.String("output", out),
			zap.String("fgb", outlineFGB),
			zap.Int("rings", len(rings)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "%d outline rings written to %s\n", len(rings), out)
		return nil
	},
}

func layerName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func writeFGB(path, name string, rings []orb.LineString) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "outline: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "outline: create %s", path)
	}
	if err := outline.WriteFlatGeobuf(f, name, rings); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "outline: close %s", path)
	}
	return nil
}

func init() {
	outlineCmd.Flags().StringVar(&outlineContinent, "continent", "", "continent code; reads <maps_dir>/<code>.geojson")
	outlineCmd.Flags().StringVar(&outlineInput, "input", "", "continent FeatureCollection (overrides --continent)")
	outlineCmd.Flags().StringVar(&outlineOutput, "output", "", "outline GeoJSON path (default: <input>_outline.geojson)")
	outlineCmd.Flags().StringVar(&outlineFGB, "fgb", "", "also write the rings as FlatGeobuf to this path")
	rootCmd.AddCommand(outlineCmd)
}
