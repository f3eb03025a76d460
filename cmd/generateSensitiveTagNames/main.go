/*
fixdecoder — FIX protocol decoder tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/

// Command generateSensitiveTagNames scans the repository's resources/*.xml
// FIX dictionaries for field names that look sensitive (account numbers,
// credentials, counterparty identifiers) and writes fix/sensitiveTagNames.go
// with a tag-to-name map the Obfuscator can be seeded from.
package main

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// formatSource and filepathGlob are indirections so tests can force their
// error paths without touching the real filesystem or gofmt.
var (
	formatSource = format.Source
	filepathGlob = filepath.Glob
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// findRepoRoot walks upward from the current directory looking for a
// go.mod file or a resources directory, either of which marks the repo
// root this tool expects to run from.
func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	for {
		if exists(filepath.Join(dir, "go.mod")) || isDir(filepath.Join(dir, "resources")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("cannot locate repo root (no go.mod or resources directory found)")
		}

		dir = parent
	}
}

type genField struct {
	Number int    `xml:"number,attr"`
	Name   string `xml:"name,attr"`
}

type genFix struct {
	Fields struct {
		Field []genField `xml:"field"`
	} `xml:"fields"`
}

// parseFixXML extracts tag -> field name from one dictionary XML file,
// skipping entries with tag 0 or an empty name.
func parseFixXML(path string) (map[int]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var raw genFix
	if err := xml.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make(map[int]string)

	for _, field := range raw.Fields.Field {
		if field.Number == 0 || field.Name == "" {
			continue
		}

		out[field.Number] = field.Name
	}

	return out, nil
}

// loadAllFields merges the field maps of every path in order; the first
// file to define a tag wins on a collision.
func loadAllFields(paths []string) (map[int]string, error) {
	out := make(map[int]string)

	for _, path := range paths {
		fields, err := parseFixXML(path)
		if err != nil {
			return nil, err
		}

		for tag, name := range fields {
			if _, exists := out[tag]; !exists {
				out[tag] = name
			}
		}
	}

	return out, nil
}

// sensitiveKeywords are matched case-insensitively as substrings of a
// field's name; a match marks the tag as one an Obfuscator should alias.
var sensitiveKeywords = []string{
	"account", "user", "password", "sender", "target", "location",
}

// filterSensitive returns the subset of all whose field name contains
// any of sensitiveKeywords.
func filterSensitive(all map[int]string) map[int]string {
	out := make(map[int]string)

	for tag, name := range all {
		lower := strings.ToLower(name)

		for _, keyword := range sensitiveKeywords {
			if strings.Contains(lower, keyword) {
				out[tag] = name
				break
			}
		}
	}

	return out
}

func writeHeader(w *bytes.Buffer) {
	w.WriteString("package fix\n\n")
	w.WriteString("// Code generated by generateSensitiveTagNames; DO NOT EDIT.\n\n")
}

func writeMap(w *bytes.Buffer, tags map[int]string) {
	keys := make([]int, 0, len(tags))
	for tag := range tags {
		keys = append(keys, tag)
	}

	sort.Ints(keys)

	w.WriteString("var SensitiveTagNames = map[int]string{\n")

	for _, tag := range keys {
		fmt.Fprintf(w, "\t%d: %q,\n", tag, tags[tag])
	}

	w.WriteString("}\n")
}

// writeGeneratedFile renders tags to path, gofmt-ing the result when
// possible and falling back to the unformatted buffer when formatSource
// fails. The file is written to a ".tmp" sibling first and renamed into
// place so a reader never observes a partially written file.
func writeGeneratedFile(path string, tags map[int]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	var buf bytes.Buffer
	writeHeader(&buf)
	writeMap(&buf, tags)

	formatted, err := formatSource(buf.Bytes())
	if err != nil {
		formatted = buf.Bytes()
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, formatted, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, path, err)
	}

	return nil
}

// relOrSame returns path relative to root when that relative path stays
// within root, otherwise it returns path unchanged.
func relOrSame(path, root string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return rel
}

func run() error {
	repoRoot, err := findRepoRoot()
	if err != nil {
		return err
	}

	resourcesDir := filepath.Join(repoRoot, "resources")
	if !isDir(resourcesDir) {
		return fmt.Errorf("resources directory not found: %s", resourcesDir)
	}

	files, err := filepathGlob(filepath.Join(resourcesDir, "*.xml"))
	if err != nil {
		return fmt.Errorf("glob resources: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("no FIX XML files found in %s", resourcesDir)
	}

	sort.Strings(files)

	all, err := loadAllFields(files)
	if err != nil {
		return err
	}

	sensitive := filterSensitive(all)
	if len(sensitive) == 0 {
		return fmt.Errorf("no sensitive tags found")
	}

	outPath := filepath.Join(repoRoot, "fix", "sensitiveTagNames.go")
	if err := writeGeneratedFile(outPath, sensitive); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d sensitive tags)\n", relOrSame(outPath, repoRoot), len(sensitive))

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "generateSensitiveTagNames:", err)
		os.Exit(1)
	}
}
