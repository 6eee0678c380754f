package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/calegria/shotwork/internal/formatter"
	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/shared"
	"github.com/urfave/cli/v3"
)

// writeFile writes export output to disk.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// taskID reads the positional task id argument.
func taskID(cmd *cli.Command) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	return id, nil
}

// TaskCreate creates a task from its originating photo.
func (r *Runner) TaskCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.CreateTask(ctx,
		cmd.String("title"),
		int(cmd.Int("sets")),
		cmd.Bool("video"),
		cmd.String("photo"),
		actor,
	)
	if err != nil {
		return err
	}

	r.writePlain("✓ Task created\n")
	r.writePlain("ID: %s\n", task.TaskID)
	r.writePlain("Title: %s\n", task.Title)
	r.writePlain("Required sets: %d (%d photos each", task.RequireSets, task.RequirePhotos)
	if task.VideoRequired {
		r.writePlain(" + video")
	}
	r.writePlain(")\n")
	return nil
}

// TaskList lists tasks, optionally filtered by status or archived flag.
func (r *Runner) TaskList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	var statusFilter *models.Status
	if raw := cmd.String("status"); raw != "" {
		status := models.Status(raw)
		statusFilter = &status
	}
	var archivedFilter *bool
	if cmd.IsSet("archived") {
		archived := cmd.Bool("archived")
		archivedFilter = &archived
	}

	list, err := r.service.ListTasks(ctx, statusFilter, archivedFilter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}

	if len(list) == 0 {
		r.writePlain("No tasks found\n")
		return nil
	}

	for _, task := range list {
		line := fmt.Sprintf("#%d  %-12s %d/%d sets  %s", task.Sequence, task.Status, task.CompletedSets, task.RequireSets, task.Title)
		if task.LockedTo != "" {
			line += fmt.Sprintf("  [locked: %s]", task.LockedTo)
		}
		r.writePlain("%s\n   %s\n", line, task.TaskID)
	}
	return nil
}

// TaskShow prints a task with its media sets and allowed next actions.
func (r *Runner) TaskShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(task, true)
	}

	r.writePlainHeader(task.Title)
	r.writePlain("ID: %s\n", task.TaskID)
	r.writePlain("Status: %s", task.Status)
	if task.Archived {
		r.writePlain(" (was %s)", task.PreArchiveStatus)
	}
	r.writePlain("\n")
	r.writePlain("Progress: %d/%d sets complete\n", task.CompletedSets, task.RequireSets)
	r.writePlain("Created by: %s\n", task.CreatedBy)
	if task.DoneBy != "" {
		r.writePlain("Done by: %s\n", task.DoneBy)
	}
	if task.LockedTo != "" {
		r.writePlain("Locked to: %s\n", task.LockedTo)
	}
	r.writePlain("Originating photo: %s (protected)\n", task.CreatedPhoto.FileID)

	for i, set := range task.Sets {
		r.writePlain("\nSet %d: %d photos", i+1, len(set.Photos))
		if set.Video != nil {
			r.writePlain(", video %s", set.Video.FileID)
		} else if task.VideoRequired {
			r.writePlain(", video missing")
		}
		r.writePlain("\n")
		for _, photo := range set.Photos {
			r.writePlain("  %s (by %s)\n", photo.FileID, photo.UploadedBy)
		}
	}

	if actor, err := r.actor(cmd); err == nil {
		allowed, err := r.service.AllowedActions(ctx, id, actor)
		if err == nil && len(allowed) > 0 {
			names := make([]string, len(allowed))
			for i, status := range allowed {
				names[i] = string(status)
			}
			r.writePlain("\nAllowed actions for %s: %s\n", actor.ActorID, strings.Join(names, ", "))
		}
	}
	return nil
}

// TaskTransition moves a task to another status.
func (r *Runner) TaskTransition(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.TransitionTask(ctx, id, models.Status(cmd.String("to")), actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s is now %s\n", task.Title, task.Status)
	return nil
}

// TaskArchive archives a submitted or completed task.
func (r *Runner) TaskArchive(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.ArchiveTask(ctx, id, actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s archived (was %s)\n", task.Title, task.PreArchiveStatus)
	return nil
}

// TaskRestore returns an archived task to its pre-archive status.
func (r *Runner) TaskRestore(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.RestoreTask(ctx, id, actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s restored to %s\n", task.Title, task.Status)
	return nil
}

// TaskAddPhoto adds a photo to a media set.
func (r *Runner) TaskAddPhoto(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.AddPhoto(ctx, id, int(cmd.Int("set")), cmd.String("file"), actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ Photo added to set %d (%d/%d sets complete)\n", cmd.Int("set")+1, task.CompletedSets, task.RequireSets)
	return nil
}

// TaskAddVideo attaches a video to a media set.
func (r *Runner) TaskAddVideo(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.AddVideo(ctx, id, int(cmd.Int("set")), cmd.String("file"), actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ Video attached to set %d (%d/%d sets complete)\n", cmd.Int("set")+1, task.CompletedSets, task.RequireSets)
	return nil
}

// TaskDeleteMedia deletes media items from a task as one atomic batch.
func (r *Runner) TaskDeleteMedia(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	fileIDs := cmd.StringSlice("file")
	task, err := r.service.DeleteMediaBatch(ctx, id, fileIDs, actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ Deleted %d media item(s) (%d/%d sets complete)\n", len(fileIDs), task.CompletedSets, task.RequireSets)
	return nil
}

// TaskDelete permanently deletes a task and purges its media.
func (r *Runner) TaskDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: deletion is irreversible, pass --yes to confirm", shared.ErrMissingArgument)
	}

	if err := r.service.DeleteTask(ctx, id, actor); err != nil {
		return err
	}

	r.writePlain("✓ Task %s permanently deleted\n", id)
	return nil
}

// TaskLock reserves exclusive edit rights on a task.
func (r *Runner) TaskLock(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.LockTask(ctx, id, actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s locked to %s\n", task.Title, task.LockedTo)
	return nil
}

// TaskUnlock releases a task lock.
func (r *Runner) TaskUnlock(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	actor, err := r.actor(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.UnlockTask(ctx, id, actor)
	if err != nil {
		return err
	}

	r.writePlain("✓ %s unlocked\n", task.Title)
	return nil
}

// TaskExport exports a task's media manifest to the requested format.
func (r *Runner) TaskExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	id, err := taskID(cmd)
	if err != nil {
		return err
	}

	task, err := r.service.GetTask(ctx, id)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	output := cmd.String("output")

	switch format {
	case "json":
		data, err := formatter.ToTaskJSON(task)
		if err != nil {
			return err
		}
		if output == "" {
			r.writePlain("%s\n", data)
			return nil
		}
		return writeFile(output, data)
	case "csv":
		result, err := formatter.WriteCSVExport(task, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported: %s, %s\n", result.MediaFile, result.MetadataFile)
		return nil
	case "markdown", "md":
		path, err := formatter.WriteMarkdownExport(task, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported: %s\n", path)
		return nil
	case "text", "txt":
		path, err := formatter.WriteTextExport(task, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported: %s\n", path)
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
