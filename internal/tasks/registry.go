package tasks

import (
	"fmt"
	"time"

	"github.com/calegria/shotwork/internal/models"
	"github.com/calegria/shotwork/internal/shared"
)

// AddPhoto appends a photo to the set at setIndex, creating intermediate
// empty sets up to that index. The file ID must be unique across all of the
// task's media, the originating photo included. Completeness is recomputed
// before returning.
func AddPhoto(task *models.Task, setIndex int, fileID string, actor models.Actor) error {
	if err := checkMediaSlot(task, setIndex, fileID); err != nil {
		return err
	}

	growSets(task, setIndex)
	task.Sets[setIndex].Photos = append(task.Sets[setIndex].Photos, models.MediaItem{
		FileID:     fileID,
		Kind:       models.MediaPhoto,
		UploadedBy: actor.ActorID,
		UploadedAt: time.Now().UTC(),
	})

	RecomputeCompletedSets(task)
	task.Touch()
	return nil
}

// AddVideo attaches a video to the set at setIndex. Each set holds at most
// one video; replacing requires an explicit delete first.
func AddVideo(task *models.Task, setIndex int, fileID string, actor models.Actor) error {
	if err := checkMediaSlot(task, setIndex, fileID); err != nil {
		return err
	}
	if setIndex < len(task.Sets) && task.Sets[setIndex].Video != nil {
		return fmt.Errorf("%w: set %d", shared.ErrVideoAlreadyPresent, setIndex)
	}

	growSets(task, setIndex)
	task.Sets[setIndex].Video = &models.MediaItem{
		FileID:     fileID,
		Kind:       models.MediaVideo,
		UploadedBy: actor.ActorID,
		UploadedAt: time.Now().UTC(),
	}

	RecomputeCompletedSets(task)
	task.Touch()
	return nil
}

// DeleteMedia removes the media item with fileID from whichever set holds it.
//
// The originating photo is never deletable, by any role: downstream chat
// messages reference it permanently. Remaining photos keep their order.
func DeleteMedia(task *models.Task, fileID string, actor models.Actor) error {
	if fileID == task.CreatedPhoto.FileID {
		return fmt.Errorf("%w: %s", shared.ErrProtectedMedia, fileID)
	}
	if !CanDeleteMedia(actor.Role) {
		return fmt.Errorf("%w: delete media", shared.ErrForbidden)
	}

	for i := range task.Sets {
		set := &task.Sets[i]

		for j, photo := range set.Photos {
			if photo.FileID == fileID {
				set.Photos = append(set.Photos[:j], set.Photos[j+1:]...)
				RecomputeCompletedSets(task)
				task.Touch()
				return nil
			}
		}

		if set.Video != nil && set.Video.FileID == fileID {
			set.Video = nil
			RecomputeCompletedSets(task)
			task.Touch()
			return nil
		}
	}

	return fmt.Errorf("%w: %s", shared.ErrMediaNotFound, fileID)
}

// checkMediaSlot validates the set index against the task's configured set
// count and rejects duplicate file IDs.
func checkMediaSlot(task *models.Task, setIndex int, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: file id is required", shared.ErrInvalidInput)
	}
	if setIndex < 0 || setIndex >= task.RequireSets {
		return fmt.Errorf("%w: index %d, task requires %d sets", shared.ErrSetIndexOutOfRange, setIndex, task.RequireSets)
	}
	if task.HasFileID(fileID) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateMedia, fileID)
	}
	return nil
}

// growSets extends task.Sets with empty sets so setIndex is addressable.
func growSets(task *models.Task, setIndex int) {
	for len(task.Sets) <= setIndex {
		task.Sets = append(task.Sets, models.MediaSet{Photos: []models.MediaItem{}})
	}
}
