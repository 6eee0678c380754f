// package formatter provides functions to export task data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/shared"
)

// manifestRow is one media item flattened for tabular export.
type manifestRow struct {
	SetIndex   int
	Kind       models.MediaKind
	FileID     string
	UploadedBy string
	UploadedAt time.Time
	Protected  bool
}

// manifest flattens a task's media into rows: the originating photo first
// (set index -1, protected), then every set's photos in upload order
// followed by its video.
func manifest(task *models.Task) []manifestRow {
	rows := []manifestRow{{
		SetIndex:   -1,
		Kind:       models.MediaPhoto,
		FileID:     task.CreatedPhoto.FileID,
		UploadedBy: task.CreatedPhoto.UploadedBy,
		UploadedAt: task.CreatedPhoto.UploadedAt,
		Protected:  true,
	}}

	for i, set := range task.Sets {
		for _, photo := range set.Photos {
			rows = append(rows, manifestRow{
				SetIndex:   i,
				Kind:       photo.Kind,
				FileID:     photo.FileID,
				UploadedBy: photo.UploadedBy,
				UploadedAt: photo.UploadedAt,
			})
		}
		if set.Video != nil {
			rows = append(rows, manifestRow{
				SetIndex:   i,
				Kind:       set.Video.Kind,
				FileID:     set.Video.FileID,
				UploadedBy: set.Video.UploadedBy,
				UploadedAt: set.Video.UploadedAt,
			})
		}
	}

	return rows
}

// ExportToCSV converts a task's media manifest to CSV with columns:
// SetIndex, Kind, FileID, UploadedBy, UploadedAt, Protected
func ExportToCSV(task *models.Task) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SetIndex", "Kind", "FileID", "UploadedBy", "UploadedAt", "Protected"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range manifest(task) {
		record := []string{
			strconv.Itoa(row.SetIndex),
			string(row.Kind),
			row.FileID,
			row.UploadedBy,
			row.UploadedAt.Format(time.RFC3339),
			strconv.FormatBool(row.Protected),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a task to a Markdown report with a per-set
// media listing.
func ExportToMarkdown(task *models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", task.Title))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", task.Status))
	if task.Archived {
		buf.WriteString(fmt.Sprintf("**Pre-archive status**: %s\n", task.PreArchiveStatus))
	}
	buf.WriteString(fmt.Sprintf("**Progress**: %d/%d sets complete\n", task.CompletedSets, task.RequireSets))
	buf.WriteString(fmt.Sprintf("**Created by**: %s\n", task.CreatedBy))
	if task.DoneBy != "" {
		buf.WriteString(fmt.Sprintf("**Done by**: %s\n", task.DoneBy))
	}
	if task.LockedTo != "" {
		buf.WriteString(fmt.Sprintf("**Locked to**: %s\n", task.LockedTo))
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("**Originating photo**: %s (protected)\n\n", task.CreatedPhoto.FileID))

	for i, set := range task.Sets {
		buf.WriteString(fmt.Sprintf("## Set %d\n\n", i+1))
		for j, photo := range set.Photos {
			buf.WriteString(fmt.Sprintf("%d. photo %s (by %s)\n", j+1, photo.FileID, photo.UploadedBy))
		}
		if set.Video != nil {
			buf.WriteString(fmt.Sprintf("- video %s (by %s)\n", set.Video.FileID, set.Video.UploadedBy))
		} else if task.VideoRequired {
			buf.WriteString("- video missing\n")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a task to a plain text summary.
func ExportToText(task *models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Task: %s\n", task.Title))
	buf.WriteString(fmt.Sprintf("Status: %s\n", task.Status))
	buf.WriteString(fmt.Sprintf("Sets: %d/%d complete\n", task.CompletedSets, task.RequireSets))
	buf.WriteString(fmt.Sprintf("Media items: %d\n\n", task.MediaCount()))

	for _, row := range manifest(task) {
		label := "set " + strconv.Itoa(row.SetIndex+1)
		if row.SetIndex < 0 {
			label = "origin"
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\n", label, row.Kind, row.FileID))
	}

	return buf.Bytes(), nil
}

// ToTaskJSON generates a pretty-printed JSON representation of the task.
func ToTaskJSON(task *models.Task) ([]byte, error) {
	return shared.MarshalJSON(task, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MediaFile    string
	MetadataFile string
}

// WriteCSVExport exports a task to CSV format with accompanying metadata JSON file.
//
// Defaults to task ID as the base filename & creates {base}_media.csv and {base}_metadata.json
func WriteCSVExport(task *models.Task, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = task.TaskID
	}

	csvData, err := ExportToCSV(task)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	mediaFile := baseFilepath + "_media.csv"
	if err := os.WriteFile(mediaFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToTaskJSON(task)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MediaFile:    mediaFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a task report to Markdown.
//
// Defaults to {task.ID}.md as the filename.
func WriteMarkdownExport(task *models.Task, filepath string) (string, error) {
	if filepath == "" {
		filepath = task.TaskID + ".md"
	}

	mdData, err := ExportToMarkdown(task)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a task to plain text format.
//
// Defaults to {task.ID}.txt as the filename.
func WriteTextExport(task *models.Task, filepath string) (string, error) {
	if filepath == "" {
		filepath = task.TaskID + ".txt"
	}

	textData, err := ExportToText(task)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
