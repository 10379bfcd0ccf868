package logger

import (
	"fmt"
	"os"
	"path/filepath"
)

type StringListReport struct {
	Title string
	Items []string
}

var GlobalSyncReport StringListReport
var ReportPath = "cache"

func init() {
	GlobalSyncReport = StringListReport{
		Title: "SyncedIndexes",
		Items: []string{},
	}
}

// WriteSyncReportToFile writes the GlobalSyncReport to a text file as a list.
// The title is appended to the filename, e.g., channel-sync-title.txt.
func WriteSyncReportToFile() error {
	if err := os.MkdirAll(ReportPath, 0755); err != nil {
		return fmt.Errorf("creating base path: %w", err)
	}

	// Sanitize the title for use in a filename
	title := GlobalSyncReport.Title
	if title == "" {
		title = "untitled"
	}
	safeTitle := ""
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			safeTitle += string(r)
		} else {
			safeTitle += "_"
		}
	}

	reportFullPath := filepath.Join(ReportPath, fmt.Sprintf("channel-sync-%s.txt", safeTitle))

	f, err := os.OpenFile(reportFullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	for _, item := range GlobalSyncReport.Items {
		if _, err := fmt.Fprintln(f, item); err != nil {
			return fmt.Errorf("writing to file: %w", err)
		}
	}

	GlobalSyncReport.Items = []string{}
	if _, err := fmt.Fprintln(f); err != nil {
		return fmt.Errorf("writing new line to file: %w", err)
	}

	return nil
}
