// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/karmacoin/node/app/services/node/handlers/v1/public"
	"github.com/karmacoin/node/foundation/blockchain/state"
	"github.com/karmacoin/node/foundation/blockchain/verifier"
	"github.com/karmacoin/node/foundation/events"
	"github.com/karmacoin/node/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	State    *state.State
	Verifier *verifier.Verifier
	Evts     *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:      cfg.Log,
		State:    cfg.State,
		Verifier: cfg.Verifier,
		Evts:     cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)

	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/tx/:hash", pbl.Transaction)
	app.Handle(http.MethodGet, version, "/account/:account/tx", pbl.AccountTransactions)

	app.Handle(http.MethodGet, version, "/user/account/:account", pbl.UserByAccount)
	app.Handle(http.MethodGet, version, "/user/name/:name", pbl.UserByName)
	app.Handle(http.MethodGet, version, "/user/number/:number", pbl.UserByNumber)

	app.Handle(http.MethodGet, version, "/chain", pbl.ChainData)
	app.Handle(http.MethodGet, version, "/genesis", pbl.GenesisData)
	app.Handle(http.MethodGet, version, "/blocks/:from/:to", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/block-events/:from/:to", pbl.BlockEvents)
	app.Handle(http.MethodGet, version, "/leaderboard", pbl.Leaderboard)
	app.Handle(http.MethodGet, version, "/contacts", pbl.Contacts)

	app.Handle(http.MethodPost, version, "/verifier/register", pbl.RegisterNumber)
	app.Handle(http.MethodPost, version, "/verifier/verify", pbl.VerifyNumber)
}
