package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmania/geoprep/internal/catalog"
	"github.com/mapmania/geoprep/internal/geofile"
	"github.com/mapmania/geoprep/internal/label"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"labels", "outline", "extract", "catalog", "flags"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "geoprep", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCatalogCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range catalogCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"check", "compare", "missing", "fetch", "fix-accents", "export", "import"} {
		assert.True(t, names[name], "catalog should have subcommand %q", name)
	}
}

func TestFlagsCommand_HasOrder(t *testing.T) {
	require.Len(t, flagsCmd.Commands(), 1)
	assert.Equal(t, "order", flagsCmd.Commands()[0].Name())
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   string
		flags []string
	}{
		{"labels", []string{"input", "output"}},
		{"outline", []string{"continent", "input", "output", "fgb"}},
		{"extract", []string{"input", "output", "continent", "name", "name-key"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			c, _, err := rootCmd.Find([]string{tt.cmd})
			require.NoError(t, err)
			for _, f := range tt.flags {
				assert.NotNil(t, c.Flags().Lookup(f), "%s should have --%s", tt.cmd, f)
			}
		})
	}

	for _, f := range []string{"codes", "from-missing", "output", "merge"} {
		assert.NotNil(t, catalogFetchCmd.Flags().Lookup(f), "catalog fetch should have --%s", f)
	}
	assert.Equal(t, "AF", catalogCompareCmd.Flags().Lookup("continent").DefValue)
	assert.Equal(t, "AF", extractCmd.Flags().Lookup("continent").DefValue)
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeErr(t, args...)
	require.NoError(t, err)
	return out
}

func executeErr(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func TestLabelsCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "af.geojson")
	out := filepath.Join(dir, "af_labels.geojson")

	fc := geojson.NewFeatureCollection()
	for _, c := range []struct {
		code string
		x    float64
	}{{"KM", 43}, {"SN", -15}, {"CV", -24}} {
		f := geojson.NewFeature(square(c.x, 10, 1))
		f.Properties["ISO3166-1-Alpha-2"] = c.code
		fc.Append(f)
	}
	require.NoError(t, geofile.Save(in, fc))

	stdout := execute(t, "labels", "--input", in, "--output", out)
	assert.Contains(t, stdout, "4 derived features written to "+out)

	got, err := geofile.Load(out)
	require.NoError(t, err)
	require.Len(t, got.Features, 7)
	assert.Equal(t, true, got.Features[3].Properties[label.LinkProperty])
	assert.Equal(t, "KM", got.Features[3].Properties["ISO3166-1-Alpha-2"])
}

func TestLabelsCommand_RerunDoesNotDuplicate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "af.geojson")

	f := geojson.NewFeature(square(43, -12, 1))
	f.Properties["ISO3166-1-Alpha-2"] = "KM"
	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	require.NoError(t, geofile.Save(in, fc))

	want := filepath.Join(dir, "af_with_labels.geojson")
	for i := 0; i < 2; i++ {
		stdout := execute(t, "labels", "--input", in, "--output", "")
		assert.Contains(t, stdout, "2 derived features written to "+want)
	}

	orig, err := geofile.Load(in)
	require.NoError(t, err)
	assert.Len(t, orig.Features, 1, "input must be left untouched")

	got, err := geofile.Load(want)
	require.NoError(t, err)
	require.Len(t, got.Features, 3)

	var links int
	for _, f := range got.Features {
		if f.Properties[label.LinkProperty] == true {
			links++
		}
	}
	assert.Equal(t, 1, links)
}

func TestLabelsCommand_RefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "af.geojson")
	require.NoError(t, geofile.Save(in, geojson.NewFeatureCollection()))

	_, err := executeErr(t, "labels", "--input", in, "--output", filepath.Join(dir, ".", "af.geojson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the input file")
}

func TestLabelsOutputPath(t *testing.T) {
	assert.Equal(t, "assets/maps/af_with_labels.geojson", labelsOutputPath("assets/maps/af.geojson"))
	assert.Equal(t, "world_with_labels.geojson", labelsOutputPath("world"))
}

func TestOutlineCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "af.geojson")
	fgb := filepath.Join(dir, "fgb", "af_outline.fgb")

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(square(0, 0, 1)))
	fc.Append(geojson.NewFeature(square(1, 0, 1)))
	fc.Append(geojson.NewFeature(square(5, 5, 1)))
	require.NoError(t, geofile.Save(in, fc))

	stdout := execute(t, "outline", "--input", in, "--output", "", "--fgb", fgb)
	want := filepath.Join(dir, "af_outline.geojson")
	assert.Contains(t, stdout, "2 outline rings written to "+want)

	got, err := geofile.Load(want)
	require.NoError(t, err)
	assert.Len(t, got.Features, 2)

	info, err := os.Stat(fgb)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExtractCommand_ExplicitNames(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "world.geojson")
	out := filepath.Join(dir, "pick.geojson")

	fc := geojson.NewFeatureCollection()
	for _, name := range []string{"France", "Senegal", "Peru"} {
		f := geojson.NewFeature(square(0, 0, 1))
		f.Properties["ADMIN"] = name
		fc.Append(f)
	}
	require.NoError(t, geofile.Save(in, fc))

	stdout := execute(t, "extract", "--input", in, "--output", out, "--name", "Senegal,Peru,Atlantis")
	assert.Contains(t, stdout, "2 countries written to "+out)
	assert.Contains(t, stdout, "- Atlantis")

	got, err := geofile.Load(out)
	require.NoError(t, err)
	require.Len(t, got.Features, 2)
	assert.Equal(t, "Senegal", got.Features[0].Properties["ADMIN"])
}

func TestFlagsOrderCommand(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"sn.png", "fr.svg", "FR.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	out := filepath.Join(t.TempDir(), "flag_sprite_order.dart")

	stdout := execute(t, "flags", "order", "--dir", dir, "--output", out)
	assert.Contains(t, stdout, "generated with 2 entries")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  'FR',\n  'SN',\n];\n")
}

func TestMergeNew(t *testing.T) {
	c := catalog.Catalog{
		catalog.NewCountry("SN", "AF", catalog.Localized{EN: "Senegal"}, catalog.Localized{}),
		catalog.NewCountry("CV", "AF", catalog.Localized{EN: "Cape Verde"}, catalog.Localized{}),
	}
	fetched := catalog.Catalog{
		catalog.NewCountry("SN", "AF", catalog.Localized{EN: "Senegal (api)"}, catalog.Localized{}),
		catalog.NewCountry("KM", "AF", catalog.Localized{EN: "Comoros"}, catalog.Localized{}),
	}

	merged, added := mergeNew(c, fetched)
	assert.Equal(t, 1, added)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"CV", "KM", "SN"}, []string{merged[0].Code, merged[1].Code, merged[2].Code})
	assert.Equal(t, "Senegal", merged[2].Name.EN)
	assert.Equal(t, "SN", c[0].Code, "input must not be reordered")
}

func TestPrintList(t *testing.T) {
	var buf bytes.Buffer
	printList(&buf, "missing", []string{"KM", "SC"})
	assert.Equal(t, "missing (2):\n- KM\n- SC\n", buf.String())

	buf.Reset()
	printList(&buf, "missing", nil)
	assert.Equal(t, "missing (0):\n  none\n", buf.String())
}

func TestLayerName(t *testing.T) {
	assert.Equal(t, "af_outline", layerName("/x/af_outline.geojson"))
}
