// Package filetest provides small golden-file test helpers shared by the
// package tests that compare generated output (disassembly, tokenized
// output, ...) against a checked-in expected result.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var testUpdateAllTests = flag.Bool("test.update-all-tests", false, "If set, sets all test.update-*-tests.")

// SourceFiles returns the source files in dir with the given extension.
func SourceFiles(t *testing.T, dir, ext string) []os.DirEntry {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	res := make([]os.DirEntry, 0, len(dents))
	for _, dent := range dents {
		if !dent.Type().IsRegular() {
			continue
		}
		if ext != "" && filepath.Ext(dent.Name()) != ext {
			continue
		}
		res = append(res, dent)
	}
	return res
}

// DiffOutput validates that output matches the golden file
// resultDir/name+".want", or updates it when updateFlag (or
// -test.update-all-tests) is set.
func DiffOutput(t *testing.T, name, output, resultDir string, updateFlag *bool) {
	t.Helper()

	wantFile := filepath.Join(resultDir, name+".want")
	if *updateFlag || *testUpdateAllTests {
		if err := os.WriteFile(wantFile, []byte(output), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(wantFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	want := string(wantb)
	if patch := diff.Diff(want, output); patch != "" {
		t.Errorf("diff output:\n%s\n", patch)
	}
}
