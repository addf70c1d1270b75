package myqueue

import (
	"context"
	"log"
	"os"
)

type fakeTaskQueue struct{}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakeQueue
	}
}

func newFakeQueue(c context.Context) (TaskQueuer, func(), error) {
	return &fakeTaskQueue{}, func() {}, nil
}

func (q *fakeTaskQueue) Enqueue(c context.Context, task Task) error {
	log.Printf("fake queue: enqueued task %s for %s", task.UID, task.WebhookURLPath)
	return nil
}

func (q *fakeTaskQueue) IsLastAttempt(c context.Context, taskUID string) (int32, int32) {
	return 0, -1
}
