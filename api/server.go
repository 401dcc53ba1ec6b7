package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matt-g-everett/linefield/field"
	"github.com/matt-g-everett/linefield/stream"
)

const maxBodyBytes = 64 << 10

// Controller is the part of stream.Controller the API needs.
type Controller interface {
	Submit(in stream.Input)
	Latest() *stream.Frame
}

// Api serves the browser client and a small JSON API over the field.
type Api struct {
	controller Controller
	params     func() field.Params
	clientDir  string
	logger     *log.Logger
	now        func() time.Time
}

// NewApi creates an Api. params reports the parameters currently in use.
func NewApi(controller Controller, params func() field.Params, clientDir string, logger *log.Logger) *Api {
	a := new(Api)
	a.controller = controller
	a.params = params
	a.clientDir = clientDir
	a.logger = logger
	a.now = time.Now
	return a
}

// Handler builds the router.
func (a *Api) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/frame", a.getFrame)
		r.Get("/params", a.getParams)
		r.Post("/pointer", a.postPointer)
		r.Post("/resize", a.postResize)
	})
	r.Handle("/*", http.FileServer(http.Dir(a.clientDir)))
	return r
}

// Serve listens on addr until ctx is cancelled.
func (a *Api) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr, "client", a.clientDir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type paramsView struct {
	Radius      float64  `json:"radius"`
	MaxMove     float64  `json:"maxMove"`
	MinWidth    float64  `json:"minWidth"`
	MaxWidth    float64  `json:"maxWidth"`
	MinHeight   float64  `json:"minHeight"`
	MaxHeight   float64  `json:"maxHeight"`
	MaxRotation float64  `json:"maxRotation"`
	LerpFactor  float64  `json:"lerpFactor"`
	Epsilon     float64  `json:"epsilon"`
	Gradient    []string `json:"gradient"`
	RestColor   string   `json:"restColor"`
	RestOpacity float64  `json:"restOpacity"`
	Effects     string   `json:"effects"`
	Curve       string   `json:"curve"`
	SpinSpeed   float64  `json:"spinSpeed"`
	SpinHoldMs  int64    `json:"spinHoldMs"`
}

func (a *Api) getFrame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.controller.Latest())
}

func (a *Api) getParams(w http.ResponseWriter, _ *http.Request) {
	p := a.params()
	v := paramsView{
		Radius:      p.Radius,
		MaxMove:     p.MaxMove,
		MinWidth:    p.MinWidth,
		MaxWidth:    p.MaxWidth,
		MinHeight:   p.MinHeight,
		MaxHeight:   p.MaxHeight,
		MaxRotation: p.MaxRotation,
		LerpFactor:  p.LerpFactor,
		Epsilon:     p.Epsilon,
		RestColor:   p.RestColor.Hex(),
		RestOpacity: p.RestOpacity,
		Effects:     p.Effects.String(),
		Curve:       p.Curve,
		SpinSpeed:   p.SpinSpeed,
		SpinHoldMs:  p.SpinHold.Milliseconds(),
	}
	for _, s := range p.Gradient {
		v.Gradient = append(v.Gradient, s.Color.Hex())
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *Api) postPointer(w http.ResponseWriter, r *http.Request) {
	var pm stream.PointerMessage
	if !a.decode(w, r, &pm) {
		return
	}
	ev, err := pm.Event(a.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.controller.Submit(stream.Input{Pointer: &ev})
	w.WriteHeader(http.StatusAccepted)
}

func (a *Api) postResize(w http.ResponseWriter, r *http.Request) {
	var rm stream.ResizeMessage
	if !a.decode(w, r, &rm) {
		return
	}
	if err := rm.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.controller.Submit(stream.Input{Resize: &rm})
	w.WriteHeader(http.StatusAccepted)
}

func (a *Api) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		a.logger.Debug("bad request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
