package tasks

import (
	"github.com/calegria/shotwork/internal/models"
)

// IsSetComplete reports whether a media set satisfies the completion
// predicate: at least requirePhotos photos, and a video when videoRequired.
//
// Pure function; requirePhotos comes from task configuration, not a constant.
func IsSetComplete(set models.MediaSet, requirePhotos int, videoRequired bool) bool {
	if len(set.Photos) < requirePhotos {
		return false
	}
	if videoRequired && set.Video == nil {
		return false
	}
	return true
}

// CountCompletedSets computes the number of complete sets for a task.
// Indexes beyond len(task.Sets) count as empty, incomplete sets.
func CountCompletedSets(task *models.Task) int {
	count := 0
	for i := 0; i < task.RequireSets && i < len(task.Sets); i++ {
		if IsSetComplete(task.Sets[i], task.RequirePhotos, task.VideoRequired) {
			count++
		}
	}
	return count
}

// RecomputeCompletedSets recomputes and stores task.CompletedSets.
//
// CompletedSets is derived state: it is written here and nowhere else, and
// must be refreshed after every mutation of sets, photos, or videos so the
// persisted value never drifts from the true count.
func RecomputeCompletedSets(task *models.Task) int {
	task.CompletedSets = CountCompletedSets(task)
	return task.CompletedSets
}
