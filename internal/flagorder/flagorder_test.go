package flagorder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "sn.svg", "fr.png", "FR.svg", "de.PNG", "readme.txt", "ml.jpg", "ci.svg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "xx.svg"), 0o755))

	codes, err := Scan(dir)
	require.NoError(t, err)
	// Byte order puts upper-case names first: FR.svg, ci.svg, de.PNG, fr.png, sn.svg.
	assert.Equal(t, []string{"FR", "CI", "DE", "SN"}, codes)
}

func TestScan_Empty(t *testing.T) {
	codes, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flagorder: read dir")
}

func TestRenderDart(t *testing.T) {
	want := "// GENERATED CODE - Ne pas modifier manuellement\n" +
		"\n" +
		"/// Liste des codes ISO, dans l'ordre de montage de la sprite-sheet.\n" +
		"const List<String> flagSpriteOrder = [\n" +
		"  'FR',\n" +
		"  'SN',\n" +
		"];\n"
	assert.Equal(t, want, string(RenderDart([]string{"FR", "SN"})))

	assert.Contains(t, string(RenderDart(nil)), "flagSpriteOrder = [\n];\n")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "km.svg", "cv.svg")
	out := filepath.Join(t.TempDir(), "lib", "icons", "flag_sprite_order.dart")

	n, err := Generate(dir, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(RenderDart([]string{"CV", "KM"})), string(data))
}
