package dupefilehash

import (
	"path/filepath"
	"testing"
)

func TestParseHumanSize64(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
		valid    bool
	}{
		{"0", 0, true},
		{"512", 512, true},
		{"64K", 64 * 1024, true},
		{"64k", 64 * 1024, true},
		{"64KB", 64 * 1024, true},
		{"2M", 2 * 1024 * 1024, true},
		{"1G", 1024 * 1024 * 1024, true},
		{"1.5K", 1536, true},
		{"100B", 100, true},
		{" 8K ", 8192, true},
		{"", 0, false},
		{"K", 0, false},
		{"10T", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tc := range testCases {
		got, err := ParseHumanSize64(tc.input)
		if tc.valid {
			if err != nil {
				t.Errorf("ParseHumanSize64(%q) returned error: %v", tc.input, err)
			} else if got != tc.expected {
				t.Errorf("ParseHumanSize64(%q) = %d, expected %d", tc.input, got, tc.expected)
			}
		} else if err == nil {
			t.Errorf("ParseHumanSize64(%q) expected error, got %d", tc.input, got)
		}
	}
}

func TestParseHumanSize(t *testing.T) {
	if size, err := ParseHumanSize("64K"); err != nil || size != 65536 {
		t.Errorf("Expected 65536, got %d (err %v)", size, err)
	}
	if _, err := ParseHumanSize("0"); err == nil {
		t.Error("Expected zero size to be rejected")
	}
}

func TestRelativeSlashPath(t *testing.T) {
	root := filepath.Join("tmp", "root")

	testCases := []struct {
		path     string
		expected string
	}{
		{root, "."},
		{filepath.Join(root, "file.txt"), "file.txt"},
		{filepath.Join(root, "a", "b", "c.txt"), "a/b/c.txt"},
	}

	for _, tc := range testCases {
		if got := relativeSlashPath(root, tc.path); got != tc.expected {
			t.Errorf("relativeSlashPath(%q) = %q, expected %q", tc.path, got, tc.expected)
		}
	}
}

func TestPushSorted(t *testing.T) {
	// "/r/a" was just popped; its children sort after "/r/a.txt"
	pending := []string{"/r/b", "/r/a.txt", "/r/a-1"}
	pending = pushSorted(pending, []string{"/r/a/x", "/r/a/y"})

	expected := []string{"/r/b", "/r/a/y", "/r/a/x", "/r/a.txt", "/r/a-1"}
	if len(pending) != len(expected) {
		t.Fatalf("Expected %d paths, got %d: %v", len(expected), len(pending), pending)
	}
	for i := range expected {
		if pending[i] != expected[i] {
			t.Errorf("Expected pending[%d] = %s, got %s", i, expected[i], pending[i])
		}
	}

	if got := pushSorted(nil, []string{"a", "b"}); len(got) != 2 || got[1] != "a" {
		t.Errorf("Expected smallest path last, got %v", got)
	}
	if got := pushSorted(expected, nil); len(got) != len(expected) {
		t.Errorf("Expected stack unchanged, got %v", got)
	}
}
