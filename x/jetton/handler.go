package jetton

import (
	"strconv"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createMinterCost int64 = 300
	mintCost         int64 = 100
	transferCost     int64 = 100
)

// RegisterRoutes registers the token handlers. Notification, excesses and
// bounce messages are addressed to the token receivers and must be
// registered by the extension that consumes them.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&CreateMinterMsg{}, &createMinterHandler{auth: auth, ctrl: ctrl})
	r.Handle(&MintMsg{}, &mintHandler{auth: auth, ctrl: ctrl})
	r.Handle(&TransferMsg{}, &transferHandler{auth: auth, ctrl: ctrl})
}

type createMinterHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *createMinterHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createMinterCost}, nil
}

func (h *createMinterHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	master, err := h.ctrl.CreateMinter(db, msg.Admin, msg.Content, msg.WalletCode)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{
		Data: master,
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("create_minter")},
			{Key: []byte("master"), Value: []byte(master.String())},
		},
	}, nil
}

func (h *createMinterHandler) validate(ctx weave.Context, tx weave.Tx) (*CreateMinterMsg, error) {
	var msg CreateMinterMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return &msg, nil
}

type mintHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *mintHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: mintCost}, nil
}

func (h *mintHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Mint(db, msg.Master, msg.Recipient, msg.Amount); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("mint")},
			{Key: []byte("master"), Value: []byte(msg.Master.String())},
		},
	}, nil
}

func (h *mintHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*MintMsg, error) {
	var msg MintMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	m, err := h.ctrl.Minter(db, msg.Master)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, m.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return &msg, nil
}

type transferHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *transferHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: transferCost}, nil
}

func (h *transferHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(ctx, db, msg); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("transfer")},
			{Key: []byte("master"), Value: []byte(msg.Master.String())},
			{Key: []byte("query_id"), Value: []byte(strconv.FormatUint(msg.QueryID, 10))},
		},
	}, nil
}

func (h *transferHandler) validate(ctx weave.Context, tx weave.Tx) (*TransferMsg, error) {
	var msg TransferMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	return &msg, nil
}
