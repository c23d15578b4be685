package scheduler

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func TestOutboundDeliverPayloadRoundTrip(t *testing.T) {
	jobID := uuid.New()
	task, err := NewOutboundDeliverTask(jobID)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskOutboundDeliver {
		t.Errorf("type = %s", task.Type())
	}

	payload, err := ParseOutboundDeliverPayload(task.Payload())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.JobID != jobID {
		t.Errorf("jobID = %s, want %s", payload.JobID, jobID)
	}
}

func TestParseOutboundDeliverPayloadRejectsGarbage(t *testing.T) {
	if _, err := ParseOutboundDeliverPayload([]byte(`{bad`)); err == nil {
		t.Error("malformed payload should fail")
	}
	if _, err := ParseOutboundDeliverPayload([]byte(`{}`)); err == nil {
		t.Error("payload without job id should fail")
	}
}

type testSchedulerConfig struct {
	url string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "coach" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestRedisConnOptEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)

	connOpt, err := RedisConnOpt(testSchedulerConfig{url: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("conn opt: %v", err)
	}

	client := asynq.NewClient(connOpt)
	defer client.Close()

	task, err := NewOutboundDeliverTask(uuid.New())
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	info, err := client.Enqueue(task, asynq.Queue("coach"))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if info.Queue != "coach" {
		t.Errorf("queue = %s", info.Queue)
	}
}

func TestRedisConnOptRejectsBadURL(t *testing.T) {
	if _, err := RedisConnOpt(testSchedulerConfig{url: "not-a-url"}); err == nil {
		t.Error("bad url should fail")
	}
}
