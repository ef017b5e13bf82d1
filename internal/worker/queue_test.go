package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueRunsJobsOneAtATime(t *testing.T) {
	q := NewQueue()
	defer q.Stop()

	var mu sync.Mutex
	running, maxRunning := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Do(func() {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
			})
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxRunning, "only one estimation may run at a time")
}

func TestQueueDoBlocksUntilJobCompletes(t *testing.T) {
	q := NewQueue()
	defer q.Stop()

	done := false
	q.Do(func() {
		time.Sleep(10 * time.Millisecond)
		done = true
	})

	assert.True(t, done, "Do returns only after the job ran")
}
