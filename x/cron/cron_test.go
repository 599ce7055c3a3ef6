package cron

import (
	"testing"
	"time"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/common"
)

var testCdc = amino.NewCodec()

func init() {
	testCdc.RegisterInterface((*weave.Msg)(nil), nil)
	testCdc.RegisterConcrete(&pingMsg{}, "test/ping", nil)
	testCdc.RegisterConcrete(&bouncedMsg{}, "test/bounced", nil)
}

type pingMsg struct {
	ID   string
	Fail bool
}

func (pingMsg) Path() string { return "test/ping" }

func (m *pingMsg) Validate() error { return nil }

func (m *pingMsg) BounceMsg(cause error) weave.Msg {
	return &bouncedMsg{ID: m.ID, Reason: cause.Error()}
}

type bouncedMsg struct {
	ID     string
	Reason string
}

func (bouncedMsg) Path() string { return "test/bounced" }

func (m *bouncedMsg) Validate() error { return nil }

// recordingHandler stores the ids of the processed messages together with
// the conditions they were authenticated with.
type recordingHandler struct {
	calls []string
	auth  [][]weave.Condition
}

func (h *recordingHandler) Check(weave.Context, weave.KVStore, weave.Tx) (*weave.CheckResult, error) {
	return &weave.CheckResult{}, nil
}

func (h *recordingHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case *pingMsg:
		// Write something so that discarding can be verified.
		if err := db.Set([]byte("ping:"+m.ID), []byte("x")); err != nil {
			return nil, err
		}
		if m.Fail {
			return nil, errors.Wrap(errors.ErrState, "ping failed")
		}
		h.calls = append(h.calls, "ping:"+m.ID)
	case *bouncedMsg:
		h.calls = append(h.calls, "bounced:"+m.ID)
	}
	h.auth = append(h.auth, Authenticator{}.GetConditions(ctx))
	return &weave.DeliverResult{
		Tags: []common.KVPair{{Key: []byte("msg"), Value: []byte(msg.Path())}},
	}, nil
}

func TestTaskMarshaler(t *testing.T) {
	enc := NewAminoTaskMarshaler(testCdc)
	cond := weavetest.NewCondition()

	raw, err := enc.MarshalTask([]weave.Condition{cond}, &pingMsg{ID: "a"})
	assert.Nil(t, err)
	auth, msg, err := enc.UnmarshalTask(raw)
	assert.Nil(t, err)
	assert.Equal(t, []weave.Condition{cond}, auth)
	assert.Equal(t, &pingMsg{ID: "a"}, msg)

	if _, err := enc.MarshalTask(nil, nil); !errors.ErrEmpty.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := enc.UnmarshalTask([]byte("garbage")); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTicker(t *testing.T) {
	enc := NewAminoTaskMarshaler(testCdc)
	sched := NewScheduler(enc)
	h := &recordingHandler{}
	ticker := NewTicker(h, enc, sched)

	db := store.MemStore()
	now := time.Date(2019, 5, 1, 12, 0, 0, 0, time.UTC)
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	second, err := sched.Schedule(db, now.Add(2*time.Second), []weave.Condition{bob}, &pingMsg{ID: "second"})
	assert.Nil(t, err)
	first, err := sched.Schedule(db, now.Add(time.Second), []weave.Condition{alice}, &pingMsg{ID: "first"})
	assert.Nil(t, err)
	// Same execution time as the second one, order of scheduling is kept.
	third, err := sched.Schedule(db, now.Add(2*time.Second), nil, &pingMsg{ID: "third", Fail: true})
	assert.Nil(t, err)
	deleted, err := sched.Schedule(db, now.Add(time.Second), nil, &pingMsg{ID: "deleted"})
	assert.Nil(t, err)
	assert.Nil(t, sched.Delete(db, deleted))
	if err := sched.Delete(db, deleted); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	// Nothing is due yet.
	res := ticker.Tick(weavetest.Ctx(1, now.Add(time.Second)), db)
	assert.Equal(t, 0, len(res.Tags))
	assert.Equal(t, 0, len(h.calls))

	res = ticker.Tick(weavetest.Ctx(2, now.Add(3*time.Second)), db)
	assert.Equal(t, []string{"ping:first", "ping:second"}, h.calls)
	assert.Equal(t, []weave.Condition{alice}, h.auth[0])
	assert.Equal(t, []weave.Condition{bob}, h.auth[1])
	// Two successful tasks produce their own tag and cron tag, the
	// failed one only the cron tag.
	assert.Equal(t, 5, len(res.Tags))

	results := NewTaskResultBucket()
	var tr TaskResult
	assert.Nil(t, results.One(db, first, &tr))
	assert.Equal(t, true, tr.Successful)
	assert.Equal(t, int64(2), tr.ExecHeight)
	assert.Nil(t, results.One(db, third, &tr))
	assert.Equal(t, false, tr.Successful)
	assert.Equal(t, true, len(tr.Info) > 0)
	assert.Nil(t, results.One(db, second, &tr))
	assert.Equal(t, true, tr.Successful)

	// Changes of the failed task are discarded.
	v, err := db.Get([]byte("ping:third"))
	assert.Nil(t, err)
	assert.Nil(t, v)
	v, err = db.Get([]byte("ping:first"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("x"), v)

	// The bounce is executed in the next block.
	res = ticker.Tick(weavetest.Ctx(3, now.Add(4*time.Second)), db)
	assert.Equal(t, []string{"ping:first", "ping:second", "bounced:third"}, h.calls)
	assert.Equal(t, 2, len(res.Tags))

	res = ticker.Tick(weavetest.Ctx(4, now.Add(5*time.Second)), db)
	assert.Equal(t, 0, len(res.Tags))
}

func TestTickerRequiresBlockTime(t *testing.T) {
	enc := NewAminoTaskMarshaler(testCdc)
	ticker := NewTicker(&recordingHandler{}, enc, NewScheduler(enc))
	if _, err := ticker.tick(weavetest.Ctx(1, time.Time{}), store.MemStore()); err == nil {
		t.Fatal("want error")
	}
}
