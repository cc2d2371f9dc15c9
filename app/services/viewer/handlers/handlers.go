// Package handlers contains the full set of handler functions and routes
// supported by the viewer web api.
package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"os"

	"github.com/ardanlabs/ledger/business/web/mid"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

//go:embed assets/index.html
var assets embed.FS

// UIMux constructs an http.Handler with all application routes defined.
// The page opens a websocket to the node's event stream at nodeURL.
func UIMux(shutdown chan os.Signal, log *zap.SugaredLogger, nodeURL string) (*web.App, error) {
	app := web.NewApp(
		shutdown,
		mid.Logger(log),
		mid.Errors(log),
		mid.Panics(),
		mid.Cors("*"),
	)

	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, err
	}

	index := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return tmpl.Execute(w, struct{ EventsURL string }{nodeURL + "/v1/events"})
	}
	app.Handle(http.MethodGet, "", "/", index)

	return app, nil
}
