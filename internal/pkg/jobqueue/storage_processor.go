package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// processStorageDeleteJob removes the object storage leftovers of a
// taken-down post. A partial failure fails the whole job; deletes are
// idempotent so the retry simply runs all keys again.
func (q *Queue) processStorageDeleteJob(ctx context.Context, job *Job) error {
	payload, err := StorageDeleteJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid storage delete payload: %w", err)
	}

	if q.deleter == nil {
		log.Warnf("[JobQueue] No storage client configured, dropping delete for post %s", payload.PostUUID)
		return nil
	}

	for _, key := range payload.ObjectKeys {
		if err := q.deleter.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", key, err)
		}
	}

	log.Infof("[JobQueue] Deleted %d objects for post %s", len(payload.ObjectKeys), payload.PostUUID)
	return nil
}
