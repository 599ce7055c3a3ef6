package escrow

import (
	"encoding/hex"
	"strconv"

	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/coin"
	"github.com/iov-one/escrowd/errors"
	"github.com/iov-one/escrowd/gconf"
	"github.com/iov-one/escrowd/x"
	"github.com/iov-one/escrowd/x/jetton"
	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	createEscrowCost  int64 = 300
	settleEscrowCost  int64 = 100
	collectEscrowCost int64 = 100
	retryTransferCost int64 = 100
	callbackCost      int64 = 0
)

// RegisterRoutes registers the escrow handlers together with the handlers
// of the token messages addressed to escrows.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&CreateMsg{}, &createHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ApproveMsg{}, &settleHandler{
		auth:      auth,
		ctrl:      ctrl,
		name:      "approve",
		load:      loadApprove,
		recipient: func(c *DealConfig) weave.Address { return c.Seller },
	})
	r.Handle(&RefundMsg{}, &settleHandler{
		auth:      auth,
		ctrl:      ctrl,
		name:      "refund",
		load:      loadRefund,
		recipient: func(c *DealConfig) weave.Address { return c.Buyer },
	})
	r.Handle(&CollectRoyaltiesMsg{}, &collectHandler{auth: auth, ctrl: ctrl})
	r.Handle(&RetryTransferMsg{}, &retryHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))

	r.Handle(&jetton.TransferNotificationMsg{}, &depositHandler{auth: auth, ctrl: ctrl})
	r.Handle(&jetton.ExcessesMsg{}, &excessesHandler{auth: auth, ctrl: ctrl})
	r.Handle(&jetton.TransferFailedMsg{}, &bounceHandler{auth: auth, ctrl: ctrl})
}

// NewConfigHandler returns a handler that updates the escrow
// configuration.
func NewConfigHandler(auth x.Authenticator) weave.Handler {
	return gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth)
}

func tags(action string, id []byte, queryID uint64) []common.KVPair {
	return []common.KVPair{
		{Key: []byte("action"), Value: []byte(action)},
		{Key: []byte("escrow"), Value: []byte(hex.EncodeToString(id))},
		{Key: []byte("query_id"), Value: []byte(strconv.FormatUint(queryID, 10))},
	}
}

func logger(ctx weave.Context) log.Logger {
	return weave.GetLogger(ctx).With("module", "escrow")
}

type createHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *createHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createEscrowCost}, nil
}

func (h *createHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	var payer weave.Address
	if signer := x.MainSigner(ctx, h.auth); signer != nil {
		payer = signer.Address()
	}
	id, e, err := h.ctrl.Deploy(db, payer, msg.Config, msg.Value)
	if err != nil {
		return nil, err
	}
	logger(ctx).Info("deployed", "escrow", hex.EncodeToString(id), "address", e.Address)
	return &weave.DeliverResult{Data: id, Tags: tags("create", id, 0)}, nil
}

func (h *createHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateMsg, error) {
	var msg CreateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !coin.IsEmpty(msg.Value) && x.MainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "deposit requires a signer")
	}
	return &msg, nil
}

// action is the common content of the messages sent by the guarantor.
type action struct {
	EscrowID []byte
	QueryID  uint64
	Value    *coin.Coin
}

type settleHandler struct {
	auth      x.Authenticator
	ctrl      *Controller
	name      string
	load      func(weave.Tx) (*action, error)
	recipient func(*DealConfig) weave.Address
}

func (h *settleHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: settleEscrowCost}, nil
}

func (h *settleHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	act, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	to := h.recipient(&e.Config)
	if err := h.ctrl.Settle(ctx, db, act.EscrowID, e, to, act.QueryID, act.Value); err != nil {
		return nil, err
	}
	logger(ctx).Info("settled", "escrow", hex.EncodeToString(act.EscrowID), "action", h.name, "recipient", to)
	return &weave.DeliverResult{Tags: tags(h.name, act.EscrowID, act.QueryID)}, nil
}

// validate checks the role of the sender before the state of the escrow.
func (h *settleHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*action, *Escrow, error) {
	act, err := h.load(tx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	e, err := h.ctrl.Escrow(db, act.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, e.Config.Guarantor) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "guarantor signature required")
	}
	if e.IsCompleted {
		return nil, nil, errors.Wrap(ErrAlreadyCompleted, "cannot settle twice")
	}
	return act, e, nil
}

func loadApprove(tx weave.Tx) (*action, error) {
	var msg ApproveMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &action{EscrowID: msg.EscrowID, QueryID: msg.QueryID, Value: msg.Value}, nil
}

func loadRefund(tx weave.Tx) (*action, error) {
	var msg RefundMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &action{EscrowID: msg.EscrowID, QueryID: msg.QueryID, Value: msg.Value}, nil
}

type collectHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *collectHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: collectEscrowCost}, nil
}

func (h *collectHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	residual, err := h.ctrl.Collect(ctx, db, msg.EscrowID, e, msg.QueryID, msg.Value)
	if err != nil {
		return nil, err
	}
	logger(ctx).Info("royalties collected", "escrow", hex.EncodeToString(msg.EscrowID), "residual", residual)
	return &weave.DeliverResult{Tags: tags("collect_royalties", msg.EscrowID, msg.QueryID)}, nil
}

// validate checks the state of the escrow before the role of the sender.
func (h *collectHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CollectRoyaltiesMsg, *Escrow, error) {
	var msg CollectRoyaltiesMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	e, err := h.ctrl.Escrow(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !e.IsCompleted {
		return nil, nil, errors.Wrap(ErrNotCompleted, "neither approved nor refunded")
	}
	if !h.auth.HasAddress(ctx, e.Config.Guarantor) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "guarantor signature required")
	}
	return &msg, e, nil
}

type retryHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *retryHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: retryTransferCost}, nil
}

func (h *retryHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Retry(ctx, db, msg.EscrowID, e, msg.QueryID, msg.Value); err != nil {
		return nil, err
	}
	logger(ctx).Info("transfer retried", "escrow", hex.EncodeToString(msg.EscrowID), "query_id", msg.QueryID)
	return &weave.DeliverResult{Tags: tags("retry_transfer", msg.EscrowID, msg.QueryID)}, nil
}

func (h *retryHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RetryTransferMsg, *Escrow, error) {
	var msg RetryTransferMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	e, err := h.ctrl.Escrow(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, e.Config.Guarantor) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "guarantor signature required")
	}
	return &msg, e, nil
}

// depositHandler accepts token transfer notifications. Tokens sent to an
// escrow are a deposit. Notifications for other recipients are ignored.
type depositHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *depositHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: callbackCost}, nil
}

func (h *depositHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, id, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return &weave.DeliverResult{}, nil
	}
	logger(ctx).Info("token deposit", "escrow", hex.EncodeToString(id), "amount", msg.Amount, "sender", msg.Sender)
	return &weave.DeliverResult{Tags: tags("deposit", id, msg.QueryID)}, nil
}

func (h *depositHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*jetton.TransferNotificationMsg, []byte, error) {
	var msg jetton.TransferNotificationMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	id, e, err := h.ctrl.ByAddress(db, msg.Recipient)
	switch {
	case errors.ErrNotFound.Is(err):
		return &msg, nil, nil
	case err != nil:
		return nil, nil, err
	}
	if !msg.Master.Equals(e.Config.Asset.JettonMaster()) {
		return nil, nil, errors.Wrap(errors.ErrCurrency, "escrow does not accept this token")
	}
	if !h.auth.HasAddress(ctx, e.Config.Asset.JettonWallet(e.Address)) {
		return nil, nil, errors.Wrap(ErrUnauthorized, "not sent by the escrow wallet")
	}
	return &msg, id, nil
}

// excessesHandler confirms the pending transfer of an escrow.
type excessesHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *excessesHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: callbackCost}, nil
}

func (h *excessesHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, id, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return &weave.DeliverResult{}, nil
	}
	if leg := e.PendingLeg; leg != nil && !leg.Bounced && leg.QueryID == msg.QueryID {
		e.PendingLeg = nil
		if err := h.ctrl.save(db, id, e); err != nil {
			return nil, err
		}
		logger(ctx).Info("transfer confirmed", "escrow", hex.EncodeToString(id), "query_id", msg.QueryID)
	}
	return &weave.DeliverResult{Tags: tags("transfer_confirmed", id, msg.QueryID)}, nil
}

// validate returns a nil escrow if the recipient is not an escrow. The
// escrow may already be destroyed by a royalty collection.
func (h *excessesHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*jetton.ExcessesMsg, []byte, *Escrow, error) {
	var msg jetton.ExcessesMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	id, e, err := h.ctrl.ByAddress(db, msg.Recipient)
	switch {
	case errors.ErrNotFound.Is(err):
		return &msg, nil, nil, nil
	case err != nil:
		return nil, nil, nil, err
	}
	if !msg.Master.Equals(e.Config.Asset.JettonMaster()) {
		return nil, nil, nil, errors.Wrap(errors.ErrCurrency, "unknown token")
	}
	if !h.auth.HasAddress(ctx, e.Config.Asset.JettonWallet(e.Address)) {
		return nil, nil, nil, errors.Wrap(ErrUnauthorized, "not sent by the escrow wallet")
	}
	return &msg, id, e, nil
}

// bounceHandler marks the pending transfer of an escrow as bounced. The
// tokens are back in the escrow wallet and the transfer can be retried.
type bounceHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

func (h *bounceHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: callbackCost}, nil
}

func (h *bounceHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, id, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if leg := e.PendingLeg; leg != nil && leg.QueryID == msg.QueryID {
		leg.Bounced = true
		if err := h.ctrl.save(db, id, e); err != nil {
			return nil, err
		}
	}
	logger(ctx).Info("transfer bounced", "escrow", hex.EncodeToString(id), "query_id", msg.QueryID, "reason", msg.Reason)
	return &weave.DeliverResult{Tags: tags("transfer_bounced", id, msg.QueryID)}, nil
}

func (h *bounceHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*jetton.TransferFailedMsg, []byte, *Escrow, error) {
	var msg jetton.TransferFailedMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	id, e, err := h.ctrl.ByAddress(db, msg.Owner)
	if err != nil {
		return nil, nil, nil, err
	}
	if !h.auth.HasAddress(ctx, e.Address) {
		return nil, nil, nil, errors.Wrap(ErrUnauthorized, "escrow authorization required")
	}
	return &msg, id, e, nil
}
