package game

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	"goban/internal/domain/rules"
	"goban/internal/domain/sgf"
	errs "goban/internal/errors"
	"goban/internal/httpresponse"
	"goban/internal/usecase/session"
	"goban/internal/utils"
)

type SessionManager interface {
	Create(ctx context.Context, req session.NewGameRequest) (session.Snapshot, error)
	Get(id string) (session.Snapshot, error)
	NewGame(ctx context.Context, id string, req session.NewGameRequest) (session.Snapshot, error)
	Play(ctx context.Context, id string, p game.Point) (session.MoveResult, session.Snapshot, error)
	Pass(ctx context.Context, id string) (session.Snapshot, error)
	Resign(ctx context.Context, id string) (session.Snapshot, error)
	FinishScoring(ctx context.Context, id string) (session.Snapshot, error)
	ReturnToMenu(id string) (session.Snapshot, error)
	Save(ctx context.Context, id string, props sgf.Properties) (string, error)
	Load(ctx context.Context, id string, text string) (session.Snapshot, error)
	Navigate(id string, action string) (session.Snapshot, error)
	ExitPlayback(id string) (session.Snapshot, error)
	Close(ctx context.Context, id string) error
}

type GameHandler struct {
	log     *zap.SugaredLogger
	manager SessionManager
	feed    *Feed
}

func NewGameHandler(log *zap.SugaredLogger, manager SessionManager, feed *Feed) *GameHandler {
	return &GameHandler{
		log:     log,
		manager: manager,
		feed:    feed,
	}
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", g.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", g.HandleGet)
			r.Delete("/", g.HandleClose)
			r.Post("/new", g.HandleNewGame)
			r.Post("/moves", g.HandleMove)
			r.Post("/pass", g.HandlePass)
			r.Post("/resign", g.HandleResign)
			r.Post("/score", g.HandleScore)
			r.Post("/menu", g.HandleMenu)
			r.Post("/save", g.HandleSave)
			r.Post("/load", g.HandleLoad)
			r.Post("/navigate/{action}", g.HandleNavigate)
			r.Post("/exit", g.HandleExit)
			r.Get("/feed", g.HandleFeed)
		})
	})
}

type MoveResponse struct {
	Result   session.MoveResult `json:"result"`
	Snapshot session.Snapshot   `json:"snapshot"`
}

// MoveRequest names the point to play. Both coordinates are required.
type MoveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type SaveRequest struct {
	Properties map[string]string `json:"properties"`
}

type SaveResponse struct {
	Transcript string `json:"transcript"`
}

// writeError maps usecase and domain errors to a status code.
func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	var parseErr *sgf.ParseError

	switch {
	case errors.Is(err, errs.ErrSessionNotFound),
		errors.Is(err, errs.ErrTranscriptNotFound):
		httpresponse.WriteErrorWithStatus(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, errs.ErrNotPlayersTurn),
		errors.Is(err, errs.ErrWrongPhase),
		errors.Is(err, errs.ErrNoMovesToSave):
		httpresponse.WriteErrorWithStatus(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, errs.ErrUnknownNavigation),
		errors.Is(err, errs.ErrInvalidBoardSize):
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &parseErr):
		httpresponse.WriteErrorWithStatus(w, http.StatusUnprocessableEntity, err.Error(), parseErr.Diagnostics)
	default:
		g.log.Error(err)
		httpresponse.WriteInternalErrorResponse(w)
	}
}

func (g *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req session.NewGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	snap, err := g.manager.Create(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Info("New session created with id: " + snap.ID)
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, snap)
}

func (g *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := g.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, snap)
}

func (g *GameHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if err := g.manager.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		g.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req session.NewGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	g.respond(w)(g.manager.NewGame(r.Context(), chi.URLParam(r, "id"), req))
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.Row == nil || req.Col == nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "row and col are required", nil)
		return
	}
	point := game.Point{Row: *req.Row, Col: *req.Col}

	res, snap, err := g.manager.Play(r.Context(), chi.URLParam(r, "id"), point)
	if errors.Is(err, rules.ErrInvalidMove) {
		httpresponse.WriteResponseWithStatus(w, http.StatusConflict, MoveResponse{Result: res, Snapshot: snap})
		return
	}
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Debugf("session %s: %s", snap.ID, res.Move)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, MoveResponse{Result: res, Snapshot: snap})
}

func (g *GameHandler) HandlePass(w http.ResponseWriter, r *http.Request) {
	g.respond(w)(g.manager.Pass(r.Context(), chi.URLParam(r, "id")))
}

func (g *GameHandler) HandleResign(w http.ResponseWriter, r *http.Request) {
	g.respond(w)(g.manager.Resign(r.Context(), chi.URLParam(r, "id")))
}

func (g *GameHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	g.respond(w)(g.manager.FinishScoring(r.Context(), chi.URLParam(r, "id")))
}

func (g *GameHandler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	g.respond(w)(g.manager.ReturnToMenu(chi.URLParam(r, "id")))
}

func (g *GameHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	text, err := g.manager.Save(r.Context(), chi.URLParam(r, "id"), sgf.PropertiesFromMap(req.Properties))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, SaveResponse{Transcript: text})
}

// HandleLoad takes the raw transcript as the request body. An empty body
// replays the transcript cached for the session.
func (g *GameHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	body, err := utils.ReadRequestBody(r)
	if err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "Failed to read request body", nil)
		return
	}
	g.respond(w)(g.manager.Load(r.Context(), chi.URLParam(r, "id"), string(body)))
}

func (g *GameHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	g.respond(w)(g.manager.Navigate(chi.URLParam(r, "id"), chi.URLParam(r, "action")))
}

func (g *GameHandler) HandleExit(w http.ResponseWriter, r *http.Request) {
	g.respond(w)(g.manager.ExitPlayback(chi.URLParam(r, "id")))
}

// HandleFeed upgrades to a websocket that receives the current snapshot and
// then one snapshot per state change. Incoming messages are ignored.
func (g *GameHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := g.manager.Get(id)
	if err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error:", err)
		return
	}

	sub := g.feed.subscribe(id, conn)
	defer func() {
		g.feed.unsubscribe(id, sub)
		conn.Close()
	}()

	if err = sub.send(snap); err != nil {
		g.log.Error("write error:", err)
		return
	}

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *GameHandler) respond(w http.ResponseWriter) func(session.Snapshot, error) {
	return func(snap session.Snapshot, err error) {
		if err != nil {
			g.writeError(w, err)
			return
		}
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, snap)
	}
}
