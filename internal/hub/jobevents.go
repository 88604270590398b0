package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/protocol"
)

// jobEventName is the Custom envelope event name carrying job progress.
const jobEventName = "job_event"

// JobEvent is a progress notification for an externally executed job
// (backup, restore). Created on receipt, broadcast once, then discarded.
type JobEvent struct {
	JobID     string          `json:"job_id"`
	Device    string          `json:"device"`
	JobType   string          `json:"job_type"`
	EventType string          `json:"event_type"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Error     *string         `json:"error,omitempty"`
}

// PublishJobEvent stamps the event and broadcasts it on the job-events
// topic. The bridge knows nothing about individual connections; topics are
// the sole addressing mechanism.
func (h *Hub) PublishJobEvent(event JobEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = h.clock.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.stats.recordError()
		return errors.SerializationError("failed to encode job event", err)
	}

	slog.Info("Publishing job event",
		"job_id", event.JobID,
		"device", event.Device,
		"job_type", event.JobType,
		"event_type", event.EventType,
	)
	h.LogDebug("info", "JobEvent",
		fmt.Sprintf("job %s (%s) %s for %s", event.JobID, event.JobType, event.EventType, event.Device), nil)

	_, err = h.Broadcast(protocol.TopicJobEvents, protocol.Custom{
		Event:   jobEventName,
		Payload: payload,
	})
	return err
}
