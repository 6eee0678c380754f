package formatter

import (
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calegria/shotwork/internal/models"
	tu "github.com/calegria/shotwork/internal/testing"
)

func fixtureTask() *models.Task {
	uploaded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	origin := models.MediaItem{FileID: "origin-photo", Kind: models.MediaPhoto, UploadedBy: "lead-1", UploadedAt: uploaded}

	task := models.NewTask("Storefront reshoot", 2, 3, true, origin, "lead-1")
	task.TaskID = "task-1"
	task.Status = models.StatusReceived
	task.Sets = []models.MediaSet{
		{
			Photos: []models.MediaItem{
				{FileID: "p-1", Kind: models.MediaPhoto, UploadedBy: "member-1", UploadedAt: uploaded},
				{FileID: "p-2", Kind: models.MediaPhoto, UploadedBy: "member-1", UploadedAt: uploaded},
				{FileID: "p-3", Kind: models.MediaPhoto, UploadedBy: "member-1", UploadedAt: uploaded},
			},
			Video: &models.MediaItem{FileID: "v-1", Kind: models.MediaVideo, UploadedBy: "member-1", UploadedAt: uploaded},
		},
		{
			Photos: []models.MediaItem{
				{FileID: "p-4", Kind: models.MediaPhoto, UploadedBy: "member-2", UploadedAt: uploaded},
			},
		},
	}
	task.CompletedSets = 1
	return task
}

func TestExportToCSV(t *testing.T) {
	task := fixtureTask()

	data, err := ExportToCSV(task)
	if err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	// header + origin + 4 photos + 1 video
	if len(records) != 7 {
		t.Fatalf("Expected 7 records, got %d", len(records))
	}

	if records[0][0] != "SetIndex" || records[0][2] != "FileID" {
		t.Errorf("Unexpected headers: %v", records[0])
	}

	origin := records[1]
	if origin[0] != "-1" || origin[2] != "origin-photo" || origin[5] != "true" {
		t.Errorf("Expected protected origin row first, got %v", origin)
	}

	if records[2][2] != "p-1" || records[2][5] != "false" {
		t.Errorf("Expected p-1 unprotected, got %v", records[2])
	}

	video := records[5]
	if video[1] != "video" || video[2] != "v-1" {
		t.Errorf("Expected video row, got %v", video)
	}
}

func TestExportToMarkdown(t *testing.T) {
	task := fixtureTask()

	data, err := ExportToMarkdown(task)
	if err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Storefront reshoot",
		"**Status**: received",
		"**Progress**: 1/2 sets complete",
		"origin-photo (protected)",
		"## Set 1",
		"photo p-1",
		"video v-1",
		"## Set 2",
		"video missing",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestExportToMarkdownArchived(t *testing.T) {
	task := fixtureTask()
	task.Status = models.StatusArchived
	task.Archived = true
	task.PreArchiveStatus = models.StatusSubmitted
	task.DoneBy = "member-1"

	data, err := ExportToMarkdown(task)
	if err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}
	md := string(data)

	if !strings.Contains(md, "**Pre-archive status**: submitted") {
		t.Error("Expected pre-archive status line")
	}
	if !strings.Contains(md, "**Done by**: member-1") {
		t.Error("Expected done by line")
	}
}

func TestExportToText(t *testing.T) {
	task := fixtureTask()

	data, err := ExportToText(task)
	if err != nil {
		t.Fatalf("ExportToText failed: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "Task: Storefront reshoot") {
		t.Error("Expected task title line")
	}
	if !strings.Contains(text, "Media items: 5") {
		t.Error("Expected media count line")
	}
	if !strings.Contains(text, "origin\tphoto\torigin-photo") {
		t.Error("Expected origin row")
	}
	if !strings.Contains(text, "set 1\tvideo\tv-1") {
		t.Error("Expected set 1 video row")
	}
}

func TestWriteCSVExport(t *testing.T) {
	task := fixtureTask()
	base := filepath.Join(t.TempDir(), "export")

	result, err := WriteCSVExport(task, base)
	if err != nil {
		t.Fatalf("WriteCSVExport failed: %v", err)
	}

	tu.AssertFileExists(t, result.MediaFile)
	tu.AssertFileExists(t, result.MetadataFile)

	metadata := tu.MustReadFile(t, result.MetadataFile)
	if !strings.Contains(metadata, `"id": "task-1"`) {
		t.Error("Expected metadata JSON to contain the task id")
	}
}

func TestWriteMarkdownExport(t *testing.T) {
	task := fixtureTask()
	path := filepath.Join(t.TempDir(), "report.md")

	written, err := WriteMarkdownExport(task, path)
	if err != nil {
		t.Fatalf("WriteMarkdownExport failed: %v", err)
	}
	if written != path {
		t.Errorf("Expected %s, got %s", path, written)
	}
	tu.AssertFileExists(t, written)
}

func TestWriteTextExport(t *testing.T) {
	task := fixtureTask()
	path := filepath.Join(t.TempDir(), "task.txt")

	written, err := WriteTextExport(task, path)
	if err != nil {
		t.Fatalf("WriteTextExport failed: %v", err)
	}
	tu.AssertFileExists(t, written)

	content := tu.MustReadFile(t, written)
	if !strings.Contains(content, "Status: received") {
		t.Error("Expected status line in text export")
	}
}
