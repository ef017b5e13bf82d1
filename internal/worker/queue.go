package worker

import (
	"github.com/gammazero/workerpool"
)

// Queue serializes estimation jobs. One worker slot means one inference in
// flight at a time; additional requests wait their turn in submission
// order. There is no other admission control and no cancellation once a
// job starts.
type Queue struct {
	wp *workerpool.WorkerPool
}

func NewQueue() *Queue {
	return &Queue{wp: workerpool.New(1)}
}

// Do runs job once the slot frees up and blocks until it returns.
func (q *Queue) Do(job func()) {
	q.wp.SubmitWait(job)
}

// WaitingQueueSize reports how many jobs are queued behind the running one.
func (q *Queue) WaitingQueueSize() int {
	return q.wp.WaitingQueueSize()
}

func (q *Queue) Stop() {
	q.wp.Stop()
}
