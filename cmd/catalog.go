package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/catalog"
	"github.com/mapmania/geoprep/internal/geofile"
	"github.com/mapmania/geoprep/internal/resilience"
	"github.com/mapmania/geoprep/pkg/restcountries"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Check and maintain the country catalog",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.Validate("catalog")
	},
}

// --- check ---

var (
	checkGeo  string
	checkJSON bool
)

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "List boundary-file codes missing from the catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return err
		}

		var geoCodes catalog.CodeSet
		var files []string
		if checkGeo != "" {
			fc, err := geofile.Load(checkGeo)
			if err != nil {
				return err
			}
			geoCodes = catalog.CodesFromFeatures(fc, catalog.WorldCodeKeys)
			files = []string{checkGeo}
		} else {
			geoCodes, files, err = catalog.ScanMapsDir(cmd.Context(), cfg.Paths.MapsDir, catalog.CheckCodeKeys)
			if err != nil {
				return err
			}
		}

		missing := catalog.Check(c.Codes(), geoCodes)
		zap.L().Info("catalog check",
			zap.Int("catalog_codes", len(c.Codes())),
			zap.Int("geo_codes", len(geoCodes)),
			zap.Int("files", len(files)),
			zap.Int("missing", len(missing)),
		)

		w := cmd.OutOrStdout()
		if checkJSON {
			if missing == nil {
				missing = []string{}
			}
			data, err := json.MarshalIndent(map[string][]string{"missing": missing}, "", "  ")
			if err != nil {
				return eris.Wrap(err, "catalog: encode check result")
			}
			_, err = fmt.Fprintln(w, string(data))
			return err
		}

		fmt.Fprintf(w, "%d codes in catalog, %d codes in %d boundary files\n", len(c.Codes()), len(geoCodes), len(files))
		printList(w, "codes missing from catalog", missing)
		return nil
	},
}

// --- compare ---

var (
	compareContinent string
	compareGeo       string
)

var catalogCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Diff one continent of the catalog against its boundary file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return err
		}

		geoPath := compareGeo
		if geoPath == "" {
			geoPath = catalog.MapFile(cfg.Paths.MapsDir, compareContinent)
		}
		fc, err := geofile.Load(geoPath)
		if err != nil {
			return err
		}

		diff := catalog.Compare(c, compareContinent, catalog.CodesFromFeatures(fc, catalog.CheckCodeKeys))

		w := cmd.OutOrStdout()
		printList(w, "in "+filepath.Base(geoPath)+" but not in catalog", diff.InGeoOnly)
		printList(w, "in catalog but not in "+filepath.Base(geoPath), diff.InCatalogOnly)
		return nil
	},
}

// --- missing ---

var (
	missingContinent string
	missingGeo       string
	missingOutput    string
)

var catalogMissingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Emit skeleton catalog entries for codes of a boundary file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return err
		}

		geoPath := missingGeo
		if geoPath == "" {
			geoPath = catalog.MapFile(cfg.Paths.MapsDir, missingContinent)
		}
		fc, err := geofile.Load(geoPath)
		if err != nil {
			return err
		}

		entries := catalog.MissingEntries(fc, c.Codes(), missingContinent)
		data, err := catalog.Encode(entries)
		if err != nil {
			return err
		}

		zap.L().Info("missing entries", zap.String("geo", geoPath), zap.Int("entries", len(entries)))
		return emit(cmd, missingOutput, data)
	},
}

// --- fetch ---

var (
	fetchCodes       []string
	fetchFromMissing bool
	fetchOutput      string
	fetchMerge       bool
)

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Build catalog entries from the REST Countries API",
	Long:  "Looks codes up on restcountries.com and converts them to catalog entries. Codes come from --codes or, with --from-missing, from the boundary files of the maps dir that the catalog lacks.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		c, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return err
		}

		codes := fetchCodes
		if fetchFromMissing {
			geoCodes, _, err := catalog.ScanMapsDir(cmd.Context(), cfg.Paths.MapsDir, catalog.CheckCodeKeys)
			if err != nil {
				return err
			}
			codes = append(codes, catalog.Check(c.Codes(), geoCodes)...)
		}
		if len(codes) == 0 {
			return eris.New("catalog fetch: no codes; pass --codes or --from-missing")
		}

		rc := cfg.RestCountries
		backoff := resilience.DefaultBackoff()
		backoff.Attempts = rc.MaxAttempts
		client := restcountries.NewClient(
			restcountries.WithBaseURL(rc.BaseURL),
			restcountries.WithHTTPClient(newHTTPClient(rc.TimeoutSecs)),
			restcountries.WithRateLimit(rc.RateLimit),
			restcountries.WithBatchSize(rc.BatchSize),
			restcountries.WithConcurrency(rc.Concurrency),
			restcountries.WithBackoff(backoff),
		)

		res, err := client.Lookup(cmd.Context(), codes)
		if err != nil {
			return err
		}
		fetched := catalog.FromAPIAll(res.Countries)

		if len(res.Failed) > 0 {
			zap.L().Warn("some codes could not be fetched", zap.Strings("codes", res.Failed))
			printList(cmd.ErrOrStderr(), "codes not fetched", res.Failed)
		}

		if fetchMerge {
			merged, added := mergeNew(c, fetched)
			if err := catalog.Save(cfg.Paths.Catalog, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries added to %s\n", added, cfg.Paths.Catalog)
			return nil
		}

		data, err := catalog.Encode(fetched)
		if err != nil {
			return err
		}
		return emit(cmd, fetchOutput, data)
	},
}

func newHTTPClient(timeoutSecs int) *http.Client {
	return &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second}
}

// mergeNew appends the entries of fetched whose code c lacks, sorts by code
// and reports how many were added.
func mergeNew(c, fetched catalog.Catalog) (catalog.Catalog, int) {
	have := c.Codes()
	out := append(catalog.Catalog{}, c...)
	var added int
	for _, f := range fetched {
		if have.Has(f.Code) {
			continue
		}
		have.Add(f.Code)
		out = append(out, f)
		added++
	}
	out.SortByCode()
	return out, added
}

// --- fix-accents ---

var (
	fixInput  string
	fixOutput string
)

var catalogFixAccentsCmd = &cobra.Command{
	Use:   "fix-accents",
	Short: "Repair mis-encoded characters in a catalog file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := fixInput
		if in == "" {
			in = cfg.Paths.Catalog
		}
		out := fixOutput
		if out == "" {
			out = in
		}

		c, err := catalog.Load(in)
		if err != nil {
			return err
		}
		fixed, changed := catalog.FixAccents(c)
		if err := catalog.Save(out, fixed); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d fields fixed, catalog written to %s\n", changed, out)
		return nil
	},
}

// --- export / import ---

var exportOutput string

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as an xlsx review sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := catalog.ExportXLSX(&buf, c); err != nil {
			return err
		}
		if err := geofile.WriteFile(exportOutput, buf.Bytes()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d countries exported to %s\n", len(c), exportOutput)
		return nil
	},
}

var (
	importInput  string
	importOutput string
)

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Apply a reviewed xlsx sheet to the catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := os.Stat(importInput); err != nil {
			return eris.Wrapf(err, "catalog import: %s", importInput)
		}

		c, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return err
		}
		reviewed, err := catalog.ImportXLSX(importInput)
		if err != nil {
			return err
		}

		updated, changed := catalog.ApplyReview(c, reviewed)

		out := importOutput
		if out == "" {
			out = cfg.Paths.Catalog
		}
		if err := catalog.Save(out, updated); err != nil {
			return err
		}

		zap.L().Info("review applied", zap.Strings("changed", changed))
		fmt.Fprintf(cmd.OutOrStdout(), "%d countries updated, catalog written to %s\n", len(changed), out)
		return nil
	},
}

func init() {
	catalogCheckCmd.Flags().StringVar(&checkGeo, "geo", "", "check a single boundary file instead of the maps dir")
	catalogCheckCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")

	catalogCompareCmd.Flags().StringVar(&compareContinent, "continent", catalog.Africa, "continent code")
	catalogCompareCmd.Flags().StringVar(&compareGeo, "geo", "", "boundary file (default: <maps_dir>/<continent>.geojson)")

	catalogMissingCmd.Flags().StringVar(&missingContinent, "continent", "", "continent code (required)")
	catalogMissingCmd.Flags().StringVar(&missingGeo, "geo", "", "boundary file (default: <maps_dir>/<continent>.geojson)")
	catalogMissingCmd.Flags().StringVar(&missingOutput, "output", "", "output path (default: stdout)")
	_ = catalogMissingCmd.MarkFlagRequired("continent")

	catalogFetchCmd.Flags().StringSliceVar(&fetchCodes, "codes", nil, "comma-separated ISO alpha-2 codes")
	catalogFetchCmd.Flags().BoolVar(&fetchFromMissing, "from-missing", false, "fetch the maps-dir codes the catalog lacks")
	catalogFetchCmd.Flags().StringVar(&fetchOutput, "output", "", "output path (default: stdout)")
	catalogFetchCmd.Flags().BoolVar(&fetchMerge, "merge", false, "add new entries to the catalog file instead of printing them")

	catalogFixAccentsCmd.Flags().StringVar(&fixInput, "input", "", "catalog to repair (default: paths.catalog)")
	catalogFixAccentsCmd.Flags().StringVar(&fixOutput, "output", "", "output path (default: overwrite input)")

	catalogExportCmd.Flags().StringVar(&exportOutput, "output", "countries_review.xlsx", "xlsx output path")

	catalogImportCmd.Flags().StringVar(&importInput, "input", "", "reviewed xlsx file (required)")
	catalogImportCmd.Flags().StringVar(&importOutput, "output", "", "output path (default: overwrite paths.catalog)")
	_ = catalogImportCmd.MarkFlagRequired("input")

	catalogCmd.AddCommand(
		catalogCheckCmd,
		catalogCompareCmd,
		catalogMissingCmd,
		catalogFetchCmd,
		catalogFixAccentsCmd,
		catalogExportCmd,
		catalogImportCmd,
	)
	rootCmd.AddCommand(catalogCmd)
}
