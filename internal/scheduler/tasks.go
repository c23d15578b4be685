// Package scheduler bridges persisted outbound jobs into the asynq delivery
// queue and hosts the delivery task handlers the worker binary runs.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskOutboundDeliver delivers one outbound job.
const TaskOutboundDeliver = "outbound.deliver"

// OutboundDeliverPayload carries the job id through the queue. The job row
// stays the source of truth; the queue only transports the reference.
type OutboundDeliverPayload struct {
	JobID uuid.UUID `json:"jobId"`
}

// NewOutboundDeliverTask builds the asynq task for one job.
func NewOutboundDeliverTask(jobID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(OutboundDeliverPayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("marshal deliver payload: %w", err)
	}
	return asynq.NewTask(TaskOutboundDeliver, payload, asynq.MaxRetry(5)), nil
}

// ParseOutboundDeliverPayload decodes a deliver task's payload.
func ParseOutboundDeliverPayload(data []byte) (OutboundDeliverPayload, error) {
	var p OutboundDeliverPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return OutboundDeliverPayload{}, fmt.Errorf("unmarshal deliver payload: %w", err)
	}
	if p.JobID == uuid.Nil {
		return OutboundDeliverPayload{}, fmt.Errorf("deliver payload has no job id")
	}
	return p, nil
}
