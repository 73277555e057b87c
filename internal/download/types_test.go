package download

import (
	"path/filepath"
	"testing"

	"github.com/ochronus/gogett/gett"
)

func TestDownloadTargetString(t *testing.T) {
	target := DownloadTarget{
		File: gett.File{ID: "2", ShareName: "abc123"},
		To:   "/downloads/Photos/a.jpg",
	}
	expected := "[abc123/2: /downloads/Photos/a.jpg]"
	if target.String() != expected {
		t.Errorf("expected '%s', got '%s'", expected, target.String())
	}
}

func TestDownloadDoneStatusString(t *testing.T) {
	tests := []struct {
		status   DownloadDoneStatus
		expected string
	}{
		{DownloadStatusSuccess, "Downloaded"},
		{DownloadStatusSkipped, "Skipped"},
		{DownloadStatusFailed, "Failed"},
		{DownloadDoneStatus(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if tt.status.String() != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, tt.status.String())
			}
		})
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		expected string
	}{
		{"plain", "report.pdf", "0", "report.pdf"},
		{"slashes", "a/b\\c.txt", "0", "a_b_c.txt"},
		{"trimmed", "  spaced  ", "0", "spaced"},
		{"empty", "", "fallback", "fallback"},
		{"dot", ".", "fallback", "fallback"},
		{"dotdot", "..", "fallback", "fallback"},
		{"traversal", "../../etc/passwd", "0", ".._.._etc_passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeName(tt.input, tt.fallback)
			if result != tt.expected {
				t.Errorf("SafeName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBuildTargets(t *testing.T) {
	share := &gett.Share{
		Name:  "abc123",
		Title: "Holiday/2026",
		Files: []gett.File{
			{ID: "0", ShareName: "abc123", Filename: "beach.jpg"},
			{ID: "1", ShareName: "abc123", Filename: "Beach.jpg"},
			{ID: "2", ShareName: "abc123", Filename: ""},
		},
	}

	targets := BuildTargets(share, "/downloads")
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}

	expected := []string{
		filepath.Join("/downloads", "Holiday_2026 (abc123)", "beach.jpg"),
		filepath.Join("/downloads", "Holiday_2026 (abc123)", "Beach-1.jpg"),
		filepath.Join("/downloads", "Holiday_2026 (abc123)", "2"),
	}
	for i, target := range targets {
		if target.To != expected[i] {
			t.Errorf("target %d: expected '%s', got '%s'", i, expected[i], target.To)
		}
		if target.File.ID != share.Files[i].ID {
			t.Errorf("target %d: expected file ID '%s', got '%s'", i, share.Files[i].ID, target.File.ID)
		}
	}
}

func TestBuildTargetsRenamedNameTaken(t *testing.T) {
	share := &gett.Share{
		Name: "s",
		Files: []gett.File{
			{ID: "0", ShareName: "s", Filename: "a.txt"},
			{ID: "1", ShareName: "s", Filename: "a-2.txt"},
			{ID: "2", ShareName: "s", Filename: "a.txt"},
		},
	}

	targets := BuildTargets(share, "/d")
	seen := make(map[string]string)
	for _, target := range targets {
		if other, ok := seen[target.To]; ok {
			t.Errorf("files %s and %s both map to %s", other, target.File.ID, target.To)
		}
		seen[target.To] = target.File.ID
	}

	if targets[2].To != filepath.Join("/d", "s", "a-2-2.txt") {
		t.Errorf("unexpected target for file 2: %s", targets[2].To)
	}
}

func TestShareDir(t *testing.T) {
	tests := []struct {
		name     string
		share    *gett.Share
		expected string
	}{
		{"titled", &gett.Share{Name: "abc", Title: "Docs"}, filepath.Join("out", "Docs (abc)")},
		{"untitled", &gett.Share{Name: "abc"}, filepath.Join("out", "abc")},
		{"title equals name", &gett.Share{Name: "abc", Title: "abc"}, filepath.Join("out", "abc")},
		{"unsafe title", &gett.Share{Name: "abc", Title: "a/b"}, filepath.Join("out", "a_b (abc)")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShareDir(tt.share, "out"); got != tt.expected {
				t.Errorf("ShareDir() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBuildTargetsUntitledShare(t *testing.T) {
	share := &gett.Share{
		Name:  "xyz",
		Files: []gett.File{{ID: "0", ShareName: "xyz", Filename: "a.txt"}},
	}

	targets := BuildTargets(share, "out")
	if targets[0].To != filepath.Join("out", "xyz", "a.txt") {
		t.Errorf("unexpected target path: %s", targets[0].To)
	}
}

func TestResultCount(t *testing.T) {
	result := &Result{Entries: []ResultEntry{
		{Status: DownloadStatusSuccess},
		{Status: DownloadStatusSuccess},
		{Status: DownloadStatusSkipped},
		{Status: DownloadStatusFailed},
	}}

	if result.Count(DownloadStatusSuccess) != 2 {
		t.Errorf("expected 2 successes, got %d", result.Count(DownloadStatusSuccess))
	}
	if result.Count(DownloadStatusSkipped) != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Count(DownloadStatusSkipped))
	}
	if result.Count(DownloadStatusFailed) != 1 {
		t.Errorf("expected 1 failure, got %d", result.Count(DownloadStatusFailed))
	}
}
