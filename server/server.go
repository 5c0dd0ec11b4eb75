package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"applepicker/server/fastview"
	"applepicker/server/root_view"
	"applepicker/server/section_views"
	"applepicker/simulation"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const shutdownWait = 5 * time.Second

// StatsViewer provides the running totals served at /stats.
type StatsViewer interface {
	View() simulation.StatsView
}

// Server serves a single page showing one showcase game, the totals of the batch run,
// and the websocket by which the page is updated. The page's update channel can be
// consumed by only one websocket client at a time.
type Server struct {
	addr     string
	initial  simulation.Snapshot
	rootView *root_view.RootView
	stats    StatsViewer
	logger   *slog.Logger
}

// NewServer builds the views, fed from @snapshots, and returns a server.
func NewServer(
	ctx context.Context,
	addr string,
	initial simulation.Snapshot,
	snapshots <-chan simulation.Snapshot,
	stats StatsViewer,
) (*Server, error) {
	rootView, err := root_view.NewRootView(ctx, snapshots)
	if err != nil {
		return nil, fmt.Errorf("build views: %w", err)
	}

	return &Server{
		addr:     addr,
		initial:  initial,
		rootView: rootView,
		stats:    stats,
		logger:   slog.Default().With("component", "server"),
	}, nil
}

// Router returns the server's routes.
func (server *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/stats", server.serveStats).Methods(http.MethodGet)
	return router
}

// Serve listens until @ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.Router(),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		server.logger.Info("serving", "addr", server.addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// serveWebsocket publishes view updates to the client via websocket.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		server.logger.Error("websocket", "err", err)
		return
	}

	if err := cli.Sync(); err != nil {
		server.logger.Warn("websocket sync", "err", err)
	}
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(server.stats.View()); err != nil {
		server.logger.Error("encode stats", "err", err)
	}
}

// serveIndex serves the main page, rendered from the initial snapshot.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, server.rootView, section_views.Convert(server.initial)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
