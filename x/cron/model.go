package cron

import (
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/orm"
)

// TaskResult is the outcome of a task execution, stored under the task
// id.
type TaskResult struct {
	// Successful is true if the message was processed without an error.
	Successful bool `json:"successful"`
	// Info holds the error message of a failed task.
	Info string `json:"info,omitempty"`
	// ExecTime is the block time at which the task was executed.
	ExecTime time.Time `json:"exec_time"`
	// ExecHeight is the height of the block in which the task was
	// executed.
	ExecHeight int64 `json:"exec_height"`
}

var _ orm.Model = (*TaskResult)(nil)

func (t *TaskResult) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(t)
}

func (t *TaskResult) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, t)
}

func (t *TaskResult) Validate() error {
	return nil
}

// NewTaskResultBucket returns a bucket for storing Task results.
func NewTaskResultBucket() orm.ModelBucket {
	return orm.NewModelBucket("trs", &TaskResult{})
}

// RegisterQuery registers the results bucket under /crontaskresults.
func RegisterQuery(qr weave.QueryRouter) {
	NewTaskResultBucket().Register("crontaskresults", qr)
}
