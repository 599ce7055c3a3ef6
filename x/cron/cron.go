package cron

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/orm"
	"github.com/tendermint/tendermint/libs/common"
)

var queuePrefix = []byte("_crontask:runat:")

// NewScheduler returns a scheduler implementation that is using given
// encoding for serializing data. Returned scheduler implements
// weave.Scheduler interface.
//
// Always use the same marshaler for ticker and scheduler.
func NewScheduler(enc TaskMarshaler) *Scheduler {
	return &Scheduler{
		enc: enc,
		seq: orm.NewSequence("cron", "task"),
	}
}

// Scheduler is the weave.Scheduler implementation.
type Scheduler struct {
	enc TaskMarshaler
	seq orm.Sequence
}

var _ weave.Scheduler = (*Scheduler)(nil)

// Schedule implements weave.Scheduler interface.
//
// Transaction is guaranteed to be executed after given time, but not
// exactly at given time. Tasks scheduled for the same time are executed in
// the order of scheduling.
func (s *Scheduler) Schedule(db weave.KVStore, runAt time.Time, auth []weave.Condition, msg weave.Msg) ([]byte, error) {
	raw, err := s.enc.MarshalTask(auth, msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal task")
	}
	seq, err := s.seq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "task sequence")
	}
	key := append(queueKey(runAt), seq...)
	if err := db.Set(key, raw); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return key, nil
}

// queueKey returns the prefix of all tasks scheduled at given time.
func queueKey(t time.Time) []byte {
	rawTime := make([]byte, 8)
	// Zero time does not need to put any data as the bytes are already
	// set to zero.
	if !t.IsZero() {
		binary.BigEndian.PutUint64(rawTime, uint64(t.UnixNano()))
	}
	return append(append([]byte{}, queuePrefix...), rawTime...)
}

// Delete implements weave.Scheduler interface.
func (s *Scheduler) Delete(db weave.KVStore, taskID []byte) error {
	if !bytes.HasPrefix(taskID, queuePrefix) {
		return errors.Wrap(errors.ErrInput, "not a task id")
	}
	if ok, err := db.Has(taskID); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	} else if !ok {
		return errors.Wrap(errors.ErrNotFound, "no task")
	}
	if err := db.Delete(taskID); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// NewTicker returns a cron runner instance that is using given handler to
// process all queued messages that execution time is due. All
// serialization is done using provided marshaler. Bounce messages are
// scheduled using the scheduler.
//
// Always use the same marshaler for ticker and scheduler.
func NewTicker(h weave.Handler, enc TaskMarshaler, scheduler weave.Scheduler) *Ticker {
	return &Ticker{
		hn:        h,
		enc:       enc,
		scheduler: scheduler,
		results:   NewTaskResultBucket(),
	}
}

// Ticker allows to execute messages queued for future execution. It does
// this by implementing weave.Ticker interface.
type Ticker struct {
	hn        weave.Handler
	enc       TaskMarshaler
	scheduler weave.Scheduler
	results   orm.ModelBucket
}

var _ weave.Ticker = (*Ticker)(nil)

// Tick implements weave.Ticker interface.
//
// Tick can process any number of messages suitable for execution. All
// changes are done atomically and apply only on success.
func (t *Ticker) Tick(ctx weave.Context, db weave.CacheableKVStore) weave.TickResult {
	tags, err := t.tick(ctx, db)
	if err != nil {
		failTask(err)
	}
	return weave.TickResult{Tags: tags}
}

// failTask is a variable so that it can be overwritten for tests.
var failTask = func(err error) {
	panic(fmt.Sprintf(`

Asynchronous task failed.

This error is most likely due to a database issues or some other instance
specific problems. This problem is unique to this instance and this operation
most likely succeeded on other nodes. This means that there is no way we could
continue operating as this instance is out of sync with the rest of the
network.

%+v

	`, err))
}

// tick process any number of tasks. This method is similar to the Tick
// except it provides an error.
func (t *Ticker) tick(ctx weave.Context, db weave.CacheableKVStore) ([]common.KVPair, error) {
	var tags []common.KVPair

	now, ok := weave.BlockTime(ctx)
	if !ok {
		return tags, errors.Wrap(errors.ErrHuman, "block time not present in context")
	}
	height, _ := weave.GetHeight(ctx)
	log := weave.GetLogger(ctx).With("module", "cron")

	for {
		key, raw, err := peek(db, now)
		switch {
		case errors.ErrEmpty.Is(err):
			// No more messages queued for execution at this time.
			return tags, nil
		case err != nil:
			return tags, errors.Wrap(err, "cannot pop queue")
		}

		res := TaskResult{
			Successful: true,
			ExecTime:   now,
			ExecHeight: height,
		}
		var taskTags []common.KVPair

		// Each task is processed using its own cache instance to
		// ensure changes are atomic and task processing independent.
		cache := db.CacheWrap()

		auth, msg, err := t.enc.UnmarshalTask(raw)
		if err != nil {
			res.Successful = false
			res.Info = fmt.Sprintf("cannot unmarshal task: %s", err)
		} else {
			taskCtx := withAuth(ctx, auth)
			r, err := t.hn.Deliver(taskCtx, cache, &taskTx{msg: msg})
			if err != nil {
				// Discard any changes that the deliver could have
				// created. We do not want to persist those.
				cache.Discard()
				cache = db.CacheWrap()
				res.Successful = false
				res.Info = err.Error()
				log.Info("task failed", "task", fmt.Sprintf("%X", key), "path", msg.Path(), "err", err)

				if b, ok := msg.(Bouncer); ok {
					if bounce := b.BounceMsg(err); bounce != nil {
						if _, err := t.scheduler.Schedule(cache, now, auth, bounce); err != nil {
							cache.Discard()
							return tags, errors.Wrap(err, "cannot schedule bounce")
						}
					}
				}
			} else {
				taskTags = append(taskTags, r.Tags...)
			}
		}

		if _, err := t.results.Put(cache, key, &res); err != nil {
			cache.Discard()
			return tags, errors.Wrap(err, "cannot store result")
		}
		// Remove the task from the queue as it was processed. Do it via
		// cache to keep it atomic.
		if err := cache.Delete(key); err != nil {
			cache.Discard()
			return tags, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if err := cache.Write(); err != nil {
			return tags, errors.Wrap(errors.ErrDatabase, err.Error())
		}

		tags = append(tags, taskTags...)
		tags = append(tags, common.KVPair{
			Key:   []byte("cron"),
			Value: key,
		})
	}
}

// peek reads from the queue a single task that reached its execution time
// and returns it encoded value and ID. It returns ErrEmpty if there is no
// message suitable for processing. Tasks are consumed in order of
// execution time, starting with the oldest.
func peek(db weave.KVStore, now time.Time) (id, raw []byte, err error) {
	since := queueKey(time.Time{})
	// Tasks scheduled exactly at now have keys greater than the time
	// prefix and are left for the next block.
	until := queueKey(now)
	it, err := db.Iterator(since, until)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Release()

	switch key, value, err := it.Next(); {
	case err == nil:
		return key, value, nil
	case errors.ErrIteratorDone.Is(err):
		return nil, nil, errors.ErrEmpty
	default:
		return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
}

// taskTx is a weave.Tx implementation created for running asynchronous
// tasks. It is a thin wrapper over the message.
type taskTx struct {
	msg weave.Msg
}

var _ weave.Tx = (*taskTx)(nil)

// GetMsg implements weave.Tx interface.
func (tx *taskTx) GetMsg() (weave.Msg, error) {
	return tx.msg, nil
}
