package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/cli/node"
	"go.dedis.ch/matchgame/contracts/gamestats"
	gsjson "go.dedis.ch/matchgame/contracts/gamestats/json"
	"go.dedis.ch/matchgame/proxy"
	proxyhttp "go.dedis.ch/matchgame/proxy/http"
	"golang.org/x/xerrors"
)

const (
	// StatsPath is the path of the player statistics endpoint.
	StatsPath = "/api/player-stats"

	// FeedPath is the path of the websocket streaming the statistics.
	FeedPath = StatsPath + "/feed"

	maxBodySize  = 1 << 16
	writeTimeout = 5 * time.Second
)

// httpAction is an action to register the player-stats endpoints on the
// proxy.
//
// - implements node.ActionTemplate
type httpAction struct{}

// Execute implements node.ActionTemplate.
func (httpAction) Execute(ctx node.Context) error {
	var p proxy.Proxy

	err := ctx.Injector.Resolve(&p)
	if err != nil {
		return xerrors.Errorf("failed to resolve proxy: %v", err)
	}

	c, err := newClient(ctx.Injector)
	if err != nil {
		return err
	}

	h := newHandler(c)

	p.RegisterHandler(StatsPath, h.serveStats)
	p.RegisterHandler(FeedPath, h.serveFeed)

	fmt.Fprintf(ctx.Out, "registered %s and %s", StatsPath, FeedPath)

	return nil
}

// handler serves the player-stats endpoints.
type handler struct {
	client   client
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func newHandler(c client) *handler {
	return &handler{
		client: c,
		logger: matchgame.Logger.With().Str("role", "stats http").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *handler) serveStats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getStats(w, r)
	case http.MethodPost:
		h.postStats(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorJSON{Error: "Method not allowed"})
	}
}

func (h *handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.stats()
	if err != nil {
		h.logger.Err(err).Str("requestID", proxyhttp.RequestID(r)).Msg("failed to get stats")
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "Failed to get player stats"})
		return
	}

	writeJSON(w, http.StatusOK, newStatsJSON(stats))
}

func (h *handler) postStats(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil || gsjson.ValidateGame(body) != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "Invalid request body"})
		return
	}

	var game gsjson.GameJSON

	err = json.Unmarshal(body, &game)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "Invalid request body"})
		return
	}

	res, err := h.client.record(gamestats.CmdOperation, game.Score, game.Won)

	if err != nil {
		h.logger.Err(err).Str("requestID", proxyhttp.RequestID(r)).Msg("failed to update stats")
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "Failed to update player stats"})
		return
	}

	if !res.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, errorJSON{Error: res.Message})
		return
	}

	writeJSON(w, http.StatusOK, successJSON{Success: true})
}

// serveFeed upgrades the connection and sends the statistics when the client
// connects, and then after every accepted transaction.
func (h *handler) serveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("upgrade failed")
		return
	}

	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := h.client.srvc.Watch(ctx)

	// The client is not expected to send anything. Reading detects when it
	// goes away.
	go func() {
		defer cancel()

		for {
			_, _, err := conn.NextReader()
			if err != nil {
				return
			}
		}
	}()

	err = h.push(conn)
	if err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-events:
			err = h.push(conn)
			if err != nil {
				return
			}
		}
	}
}

func (h *handler) push(conn *websocket.Conn) error {
	stats, err := h.client.stats()
	if err != nil {
		h.logger.Err(err).Msg("failed to read stats for the feed")
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	err = conn.WriteJSON(newStatsJSON(stats))
	if err != nil {
		h.logger.Debug().Err(err).Msg("feed closed")
		return err
	}

	return nil
}

type errorJSON struct {
	Error string `json:"error"`
}

type successJSON struct {
	Success bool `json:"success"`
}

func newStatsJSON(stats gamestats.GameStats) gsjson.StatsJSON {
	return gsjson.StatsJSON{
		HighScore:   stats.HighScore,
		GamesPlayed: stats.GamesPlayed,
		GamesWon:    stats.GamesWon,
		GamesLost:   stats.GamesLost,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}
