// Package flagorder derives the flag sprite-sheet order from a directory of
// flag images and renders it as a Dart source file.
package flagorder

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mapmania/geoprep/internal/geofile"
)

// Extensions are the image types that count as flags, compared lowercased.
var Extensions = []string{".svg", ".png"}

func isFlag(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan returns the upper-cased base names of the flag images in dir, in file
// name order. A code seen twice (fr.png and FR.svg) is kept once, at its first
// position. Subdirectories are ignored.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "flagorder: read dir %s", dir)
	}

	seen := make(map[string]bool)
	var codes []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !isFlag(name) {
			continue
		}
		code := strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// RenderDart renders codes as the flagSpriteOrder constant list.
func RenderDart(codes []string) []byte {
	var b bytes.Buffer
	b.WriteString("// GENERATED CODE - Ne pas modifier manuellement\n")
	b.WriteString("\n")
	b.WriteString("/// Liste des codes ISO, dans l'ordre de montage de la sprite-sheet.\n")
	b.WriteString("const List<String> flagSpriteOrder = [\n")
	for _, code := range codes {
		b.WriteString("  '" + code + "',\n")
	}
	b.WriteString("];\n")
	return b.Bytes()
}

// Generate scans dir and writes the Dart file to output, creating its parent
// directory. It returns the number of codes written.
func Generate(dir, output string) (int, error) {
	codes, err := Scan(dir)
	if err != nil {
		return 0, err
	}
	if err := geofile.WriteFile(output, RenderDart(codes)); err != nil {
		return 0, eris.Wrap(err, "flagorder: write dart file")
	}
	return len(codes), nil
}
