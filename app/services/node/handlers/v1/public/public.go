// Package public maintains the group of handlers for public access to the
// node.
package public

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/karmacoin/node/business/web/errs"
	"github.com/karmacoin/node/foundation/blockchain/database"
	"github.com/karmacoin/node/foundation/blockchain/state"
	"github.com/karmacoin/node/foundation/blockchain/verifier"
	"github.com/karmacoin/node/foundation/events"
	"github.com/karmacoin/node/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	State    *state.State
	Verifier *verifier.Verifier
	WS       websocket.Upgrader
	Evts     *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// =============================================================================

// SubmitTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx database.SignedTransaction
	if err := web.Decode(r, &signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "tx", signedTx)
	if err := h.State.SubmitTransaction(signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := submitResult{
		Status: "submitted",
		TxHash: signedTx.Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transaction returns a transaction with its lifecycle status and
// execution events.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := database.ParseTxHash(web.Param(r, "hash"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tws, evts, err := h.State.QueryTransaction(hash)
	if err != nil {
		return err
	}

	resp := txResult{
		Transaction: tws,
		Events:      evts,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AccountTransactions returns the transaction history of an account.
func (h Handlers) AccountTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ParseAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txs, evts, err := h.State.QueryAccountTransactions(accountID)
	if err != nil {
		return err
	}

	resp := accountTxsResult{
		Transactions: txs,
		Events:       evts,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// UserByAccount returns the user owning the account id.
func (h Handlers) UserByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ParseAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	user, err := h.State.QueryUserByAccountID(accountID)
	return respondUser(ctx, w, user, err)
}

// UserByName returns the user owning the user name.
func (h Handlers) UserByName(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	user, err := h.State.QueryUserByUserName(web.Param(r, "name"))
	return respondUser(ctx, w, user, err)
}

// UserByNumber returns the user owning the mobile number.
func (h Handlers) UserByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	user, err := h.State.QueryUserByMobileNumber(web.Param(r, "number"))
	return respondUser(ctx, w, user, err)
}

func respondUser(ctx context.Context, w http.ResponseWriter, user database.User, err error) error {
	switch {
	case err == nil:
		return web.Respond(ctx, w, user, http.StatusOK)
	case errors.Is(err, database.ErrNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)
	default:
		return err
	}
}

// =============================================================================

// ChainData returns the aggregate blockchain statistics.
func (h Handlers) ChainData(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	stats, err := h.State.QueryStats()
	if err != nil {
		return err
	}
	return web.Respond(ctx, w, stats, http.StatusOK)
}

// GenesisData returns the genesis configuration of the network.
func (h Handlers) GenesisData(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// Blocks returns the blocks in an inclusive height range.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, to, err := heightRange(r)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	blocks, err := h.State.QueryBlocks(from, to)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockEvents returns the block events in an inclusive height range.
func (h Handlers) BlockEvents(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, to, err := heightRange(r)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	evts, err := h.State.QueryBlockEvents(from, to)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, evts, http.StatusOK)
}

// Leaderboard returns the current karma leaderboard.
func (h Handlers) Leaderboard(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	entries, err := h.State.QueryLeaderboard()
	if err != nil {
		return err
	}
	return web.Respond(ctx, w, entries, http.StatusOK)
}

// Contacts returns directory entries by user name prefix, optionally
// restricted to one community.
func (h Handlers) Contacts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	prefix := r.URL.Query().Get("prefix")

	var communityID uint32
	if raw := r.URL.Query().Get("community"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		communityID = uint32(id)
	}

	contacts, err := h.State.QueryContacts(prefix, communityID)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, contacts, http.StatusOK)
}

// =============================================================================

// RegisterNumber starts a mobile number attestation by sending a one time
// code.
func (h Handlers) RegisterNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req verifier.RegisterNumberRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp, err := h.Verifier.RegisterNumber(ctx, req)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// VerifyNumber closes a mobile number attestation and returns signed
// evidence.
func (h Handlers) VerifyNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req verifier.VerifyNumberRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	evidence, err := h.Verifier.VerifyNumber(ctx, req)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, evidence, http.StatusOK)
}

// =============================================================================

func heightRange(r *http.Request) (uint64, uint64, error) {
	from, err := strconv.ParseUint(web.Param(r, "from"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	to, err := strconv.ParseUint(web.Param(r, "to"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}
