package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"covrun/internal/domain"
)

// maxManifestBytes bounds POST /api/runs bodies.
const maxManifestBytes = 1 << 20

// Deps are the collaborators the router needs.
type Deps struct {
	Store     domain.ManifestStore
	ReportDir string       // absolute path of htmlcov
	Metrics   http.Handler // optional
	OnPublish func(domain.Manifest)
	Logger    *zap.Logger
}

type handler struct {
	deps Deps
}

// NewRouter builds the report viewer routes.
func NewRouter(deps Deps) *mux.Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &handler{deps: deps}

	router := mux.NewRouter()
	router.Use(RequestIDMiddleware(deps.Logger))

	router.HandleFunc("/", h.redirectToReport).Methods(http.MethodGet)
	router.PathPrefix("/"+domain.ReportDir+"/").Handler(
		http.StripPrefix("/"+domain.ReportDir+"/", http.FileServer(http.Dir(deps.ReportDir))),
	).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/runs", h.listRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs", h.createRun).Methods(http.MethodPost)
	api.HandleFunc("/runs/{id}", h.getRun).Methods(http.MethodGet)

	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics).Methods(http.MethodGet)
	}
	return router
}

func (h *handler) redirectToReport(w http.ResponseWriter, r *http.Request) {
	// http.FileServer answers .../index.html with a redirect to the directory,
	// so point straight at the directory.
	http.Redirect(w, r, "/"+domain.ReportDir+"/", http.StatusTemporaryRedirect)
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Store.List()
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "list runs", err)
		return
	}
	if list == nil {
		list = []domain.Manifest{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	id := domain.RunID(mux.Vars(r)["id"])
	m, ok, err := h.deps.Store.Load(id)
	if domain.IsKind(err, domain.KindInvalidConfig) {
		writeError(w, r, http.StatusBadRequest, "invalid run id")
		return
	}
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "load run", err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handler) createRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var m domain.Manifest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxManifestBytes)).Decode(&m); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid manifest: "+err.Error())
		return
	}
	if m.ID == "" {
		writeError(w, r, http.StatusBadRequest, "manifest id required")
		return
	}
	if err := h.deps.Store.Save(m); err != nil {
		if domain.IsKind(err, domain.KindInvalidConfig) {
			writeError(w, r, http.StatusBadRequest, "invalid run id")
			return
		}
		h.fail(w, r, http.StatusInternalServerError, "save run", err)
		return
	}
	if h.deps.OnPublish != nil {
		h.deps.OnPublish(m)
	}
	h.deps.Logger.Info("run published", zap.String("run_id", string(m.ID)), zap.Int("exit_code", m.ExitCode))
	writeJSON(w, http.StatusCreated, m)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	h.deps.Logger.Error(msg, zap.Error(err), zap.String("request_id", RequestID(r.Context())))
	writeError(w, r, status, msg)
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg, RequestID: RequestID(r.Context())})
}

// Serve runs handler on addr until ctx is cancelled, then shuts down within
// shutdownTimeout. ready, when non-nil, receives the bound address.
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
