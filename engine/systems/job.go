package systems

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
)

/**
 * @brief A fixed pool of worker goroutines draining a job queue.
 * Asset loads run through here so the frame loop never blocks on
 * disk reads.
 */
type JobSystem struct {
	jobQueue chan metadata.JobTask
	wg       sync.WaitGroup
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		jobQueue: make(chan metadata.JobTask, channelSize),
	}
	for i := 0; i < numWorkers; i++ {
		js.wg.Add(1)
		go js.runWorker()
	}

	return js, nil
}

func (js *JobSystem) runWorker() {
	defer js.wg.Done()
	for job := range js.jobQueue {
		js.runJob(job)
	}
}

func (js *JobSystem) runJob(job metadata.JobTask) {
	results := make(chan interface{}, 1)
	if err := job.OnStart(job.InputParams, results); err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err.Error())
		if job.OnFailure != nil {
			job.OnFailure(results)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(results)
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks
 * when the queue is full.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) {
	js.jobQueue <- jt
}

// Shutdown stops accepting jobs and waits for the workers to finish
// whatever is still queued.
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}
