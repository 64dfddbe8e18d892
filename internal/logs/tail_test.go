package logs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amberpipe.log")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\nfour\n")

	result, err := Last(path, 2)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if !reflect.DeepEqual(result.Lines, []string{"three", "four"}) {
		t.Fatalf("lines = %v", result.Lines)
	}
	if result.Offset == 0 {
		t.Fatal("offset not advanced to end")
	}
}

func TestLastWithFewerLinesThanLimit(t *testing.T) {
	path := writeLog(t, "only\n")
	result, err := Last(path, 10)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if !reflect.DeepEqual(result.Lines, []string{"only"}) {
		t.Fatalf("lines = %v", result.Lines)
	}
}

func TestLastMissingFile(t *testing.T) {
	result, err := Last(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestSinceReadsIncrementally(t *testing.T) {
	path := writeLog(t, "first\n")

	initial, err := Last(path, 0)
	if err != nil {
		t.Fatalf("last: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("second\nthird\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	result, err := Since(path, initial.Offset)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if !reflect.DeepEqual(result.Lines, []string{"second", "third"}) {
		t.Fatalf("lines = %v", result.Lines)
	}

	// Nothing new: empty read, offset unchanged.
	again, err := Since(path, result.Offset)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(again.Lines) != 0 || again.Offset != result.Offset {
		t.Fatalf("result = %+v", again)
	}
}

func TestSinceClampsStaleOffset(t *testing.T) {
	path := writeLog(t, "a\nb\n")
	result, err := Since(path, 1<<20)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("lines = %v, want none after clamp", result.Lines)
	}
}
