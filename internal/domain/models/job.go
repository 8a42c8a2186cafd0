package models

import "time"

// JobStatus is the lifecycle state of an asynchronously dispatched run.
type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobRunning  JobStatus = "running"
	JobComplete JobStatus = "complete"
	JobError    JobStatus = "error"
)

// Job is the stored view of one asynchronous run, as seen by pollers.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Stats     *Stats    `json:"stats,omitempty"`
	Message   string    `json:"message,omitempty"`
	Results   []Path    `json:"results,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Apply folds an execution event into the job.
func (j *Job) Apply(ev Event, now time.Time) {
	j.UpdatedAt = now
	switch ev.Type {
	case EventStarted:
		j.Status = JobRunning
	case EventProgress:
		j.Status = JobRunning
		if ev.Progress > j.Progress {
			j.Progress = ev.Progress
		}
	case EventComplete:
		j.Status = JobComplete
		j.Progress = 100
		j.Stats = ev.Stats
		j.Results = ev.Results
	case EventError:
		j.Status = JobError
		j.Message = ev.Message
	}
}

// SimulationJobPayload is the queue message body for a dispatched run.
type SimulationJobPayload struct {
	JobID   string            `json:"jobId"`
	Request SimulationRequest `json:"request"`
}
