package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/catalog"
	"github.com/mapmania/geoprep/internal/extract"
	"github.com/mapmania/geoprep/internal/geofile"
)

var (
	extractInput     string
	extractOutput    string
	extractContinent string
	extractNames     []string
	extractNameKeys  []string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Cut a continent out of a world boundary file",
	Long:  "Keeps the features of a world GeoJSON or shapefile whose English name is in a continent list and writes them as a new FeatureCollection. Names that matched nothing are reported.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		names := extractNames
		continent := strings.ToUpper(extractContinent)
		if len(names) == 0 {
			list, ok := extract.Continents[continent]
			if !ok {
				return eris.Errorf("extract: no built-in name list for continent %q; pass --name", extractContinent)
			}
			names = list
		}

		out := extractOutput
		if out == "" {
			if continent == "" {
				return eris.New("extract: --output is required without --continent")
			}
			out = catalog.MapFile(cfg.Paths.MapsDir, continent)
		}

		world, err := geofile.LoadAny(extractInput)
		if err != nil {
			return err
		}

		fc, missing := extract.Filter(world, names, extractNameKeys)
		if err := geofile.Save(out, fc); err != nil {
			return err
		}

		zap.L().Info("extract written",
			zap.String("input", extractInput),
			zap.String("output", out),
			zap.Int("features", len(fc.Features)),
			zap.Int("missing", len(missing)),
		)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d countries written to %s\n", len(fc.Features), out)
		if len(missing) > 0 {
			printList(w, "names not found", missing)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInput, "input", "", "world boundaries, .geojson or .shp (required)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "output path (default: <maps_dir>/<continent>.geojson)")
	extractCmd.Flags().StringVar(&extractContinent, "continent", "AF", "continent code with a built-in name list")
	extractCmd.Flags().StringSliceVar(&extractNames, "name", nil, "English country names to keep (overrides the built-in list)")
	extractCmd.Flags().StringSliceVar(&extractNameKeys, "name-key", nil, "properties tried for the English name (default NAME_EN,ADMIN,name,NAME)")
	_ = extractCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(extractCmd)
}
