package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ochronus/gogett/gett"
)

// DownloadTarget is a single Ge.tt file and the local path it is saved to
type DownloadTarget struct {
	File gett.File
	To   string
}

// String returns a formatted string representation of the download target
func (dt *DownloadTarget) String() string {
	return fmt.Sprintf("[%s/%s: %s]", dt.File.ShareName, dt.File.ID, dt.To)
}

// DownloadTargetMessage represents a message to download a specific target.
// Ctx is the context of the DownloadShare call that queued it.
type DownloadTargetMessage struct {
	Ctx      context.Context
	Target   DownloadTarget
	DoneChan chan DownloadDoneStatus
}

// DownloadDoneStatus represents the result of a download operation
type DownloadDoneStatus int

const (
	DownloadStatusSuccess DownloadDoneStatus = iota
	DownloadStatusSkipped
	DownloadStatusFailed
)

// String returns a string representation of the status
func (s DownloadDoneStatus) String() string {
	switch s {
	case DownloadStatusSuccess:
		return "Downloaded"
	case DownloadStatusSkipped:
		return "Skipped"
	case DownloadStatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ResultEntry is the outcome for one target
type ResultEntry struct {
	Target DownloadTarget
	Status DownloadDoneStatus
}

// Result summarizes a share download
type Result struct {
	Share   string
	Dir     string
	Entries []ResultEntry
}

// Count returns the number of entries with the given status
func (r *Result) Count(status DownloadDoneStatus) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// SafeName turns a share title or filename into a single path element.
// fallback is used when nothing usable is left.
func SafeName(name, fallback string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	if name == "" || name == "." || name == ".." {
		return fallback
	}
	return name
}

// ShareDir returns the directory below dir that a share is saved to. Titles
// are not unique, so titled shares also carry their share name.
func ShareDir(share *gett.Share, dir string) string {
	name := share.Name
	if share.Title != "" && share.Title != share.Name {
		name = fmt.Sprintf("%s (%s)", share.Title, share.Name)
	}
	return filepath.Join(dir, SafeName(name, share.Name))
}

// BuildTargets maps every file of a share to a path below ShareDir. Files
// whose name is taken get their file ID appended until the name is free.
func BuildTargets(share *gett.Share, dir string) []DownloadTarget {
	shareDir := ShareDir(share, dir)

	used := make(map[string]bool, len(share.Files))
	targets := make([]DownloadTarget, 0, len(share.Files))
	for _, f := range share.Files {
		name := SafeName(f.Filename, f.ID)
		for used[strings.ToLower(name)] {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), f.ID, ext)
		}
		used[strings.ToLower(name)] = true

		targets = append(targets, DownloadTarget{
			File: f,
			To:   filepath.Join(shareDir, name),
		})
	}
	return targets
}
