package weavetest

import (
	"bytes"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// Cron is an in memory implementation of the scheduler. It only records
// the scheduled tasks, use Tasks to inspect them.
type Cron struct {
	Err   error
	tasks []CronTask
	seq   uint64
}

// CronTask is a task registered in the Cron.
type CronTask struct {
	ID    []byte
	RunAt time.Time
	Auth  []weave.Condition
	Msg   weave.Msg
}

var _ weave.Scheduler = (*Cron)(nil)

// Schedule implements weave.Scheduler interface.
func (c *Cron) Schedule(db weave.KVStore, runAt time.Time, auth []weave.Condition, msg weave.Msg) ([]byte, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.seq++
	tid := SequenceID(c.seq)
	c.tasks = append(c.tasks, CronTask{ID: tid, RunAt: runAt, Auth: auth, Msg: msg})
	return tid, nil
}

// Delete implements weave.Scheduler interface.
func (c *Cron) Delete(db weave.KVStore, taskID []byte) error {
	if c.Err != nil {
		return c.Err
	}
	for i, t := range c.tasks {
		if bytes.Equal(t.ID, taskID) {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return nil
		}
	}
	return errors.Wrap(errors.ErrNotFound, "no task")
}

// Tasks returns all scheduled tasks, in the order of scheduling.
func (c *Cron) Tasks() []CronTask {
	return c.tasks
}
