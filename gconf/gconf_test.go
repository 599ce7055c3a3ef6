package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/store"
	"github.com/iov-one/escrowd/weavetest"
	"github.com/iov-one/escrowd/weavetest/assert"
	amino "github.com/tendermint/go-amino"
)

var testCdc = amino.NewCodec()

type myConfig struct {
	Owner  weave.Address `json:"owner"`
	Number int64         `json:"number"`
	Text   string        `json:"text"`
}

func (c *myConfig) Marshal() ([]byte, error)   { return testCdc.MarshalBinaryBare(c) }
func (c *myConfig) Unmarshal(raw []byte) error { return testCdc.UnmarshalBinaryBare(raw, c) }
func (c *myConfig) GetOwner() weave.Address    { return c.Owner }

func (c *myConfig) Validate() error {
	if c.Number < 0 {
		return errors.Wrap(errors.ErrInput, "negative number")
	}
	return nil
}

type updateMsg struct {
	Patch *myConfig
}

func (updateMsg) Path() string       { return "test/update_config" }
func (m *updateMsg) Validate() error { return nil }

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        *myConfig
		WantSaveErr *errors.Error
	}{
		"valid": {
			Conf: &myConfig{Number: 42, Text: "foo"},
		},
		"empty": {
			Conf: &myConfig{},
		},
		"invalid configuration cannot be saved": {
			Conf:        &myConfig{Number: -1},
			WantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				if err := Load(db, "mypkg", &myConfig{}); !errors.ErrNotFound.Is(err) {
					t.Fatalf("want not found, got %v", err)
				}
				return
			}
			var got myConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.Conf, &got)
		})
	}
}

func TestInitConfig(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	raw, err := json.Marshal(map[string]interface{}{
		"conf": map[string]interface{}{
			"mypkg": map[string]interface{}{
				"owner":  owner,
				"number": 7,
				"text":   "hello",
			},
		},
	})
	assert.Nil(t, err)
	var opts weave.Options
	assert.Nil(t, json.Unmarshal(raw, &opts))

	db := store.MemStore()
	assert.Nil(t, InitConfig(db, opts, "mypkg", &myConfig{}))

	var got myConfig
	assert.Nil(t, Load(db, "mypkg", &got))
	assert.Equal(t, int64(7), got.Number)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, owner, got.Owner)

	if err := InitConfig(db, opts, "otherpkg", &myConfig{}); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestUpdateConfigurationHandler(t *testing.T) {
	owner := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	cases := map[string]struct {
		Signer     weave.Condition
		Patch      *myConfig
		WantErr    *errors.Error
		WantConfig myConfig
	}{
		"owner can update": {
			Signer:     owner,
			Patch:      &myConfig{Number: 99},
			WantConfig: myConfig{Owner: owner.Address(), Number: 99, Text: "initial"},
		},
		"stranger cannot update": {
			Signer:     stranger,
			Patch:      &myConfig{Number: 99},
			WantErr:    errors.ErrUnauthorized,
			WantConfig: myConfig{Owner: owner.Address(), Number: 1, Text: "initial"},
		},
		"missing patch": {
			Signer:     owner,
			WantErr:    errors.ErrState,
			WantConfig: myConfig{Owner: owner.Address(), Number: 1, Text: "initial"},
		},
		"invalid patch result": {
			Signer:     owner,
			Patch:      &myConfig{Number: -4},
			WantErr:    errors.ErrInput,
			WantConfig: myConfig{Owner: owner.Address(), Number: 1, Text: "initial"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			assert.Nil(t, Save(db, "mypkg", &myConfig{Owner: owner.Address(), Number: 1, Text: "initial"}))

			auth := &weavetest.Auth{Signer: tc.Signer}
			h := NewUpdateConfigurationHandler("mypkg", &myConfig{}, auth)
			tx := &weavetest.Tx{Msg: &updateMsg{Patch: tc.Patch}}

			cache := db.CacheWrap()
			if _, err := h.Deliver(weavetest.Ctx(1, now), cache, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if tc.WantErr == nil {
				assert.Nil(t, cache.Write())
			}

			var got myConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.WantConfig, got)
		})
	}
}
