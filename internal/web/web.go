package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/John-Robertt/herovault/internal/app"
	"github.com/John-Robertt/herovault/internal/domain"
	"github.com/John-Robertt/herovault/internal/render"
	"github.com/John-Robertt/herovault/internal/vault"
)

//go:embed static
var staticFiles embed.FS

// Options 是页面层面的可选项。
type Options struct {
	Title   string
	HTMXSrc string
}

type server struct {
	app  *app.App
	opts Options
	log  *zap.Logger
}

// NewHandler 构造完整路由。
//
// 变更类请求（POST）必须带 HX-Request: true，用来拒绝跨站表单提交。
func NewHandler(a *app.App, opts Options, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &server{app: a, opts: opts, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /favourites", s.handleFavourites)
	mux.HandleFunc("POST /favourites/toggle", s.handleToggle)
	mux.HandleFunc("POST /favourites/remove", s.handleRemove)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	staticFS, err := fs.Sub(staticFiles, "static")
	if err == nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	return s.logRequests(requireHTMX(mux))
}

func requireHTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if r.Header.Get("HX-Request") != "true" {
				http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests 给每个请求分配 X-Request-Id，并在完成后记一条 debug 日志。
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("dur", time.Since(started)),
		)
	})
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.app.Snapshot()
	s.render(w, r, render.Page(render.PageData{
		Title:      s.opts.Title,
		Status:     snap.Status,
		Current:    snap.Current,
		Favourites: snap.Favourites,
		HTMXSrc:    s.opts.HTMXSrc,
	}))
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	out, changed := s.app.Submit(r.Context(), r.FormValue("q"))
	if !changed {
		// 空输入：不替换结果区域（HTMX 对 204 不做 swap）。
		w.WriteHeader(http.StatusNoContent)
		return
	}
	snap := s.app.Snapshot()
	s.render(w, r, render.SearchResponse(snap.Status, out, snap.Favourites))
}

func (s *server) handleFavourites(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, render.FavList(s.app.Snapshot().Favourites, false))
}

func (s *server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	e := domain.FavouriteEntry{
		ID:   strings.TrimSpace(r.FormValue("id")),
		Name: strings.TrimSpace(r.FormValue("name")),
		Img:  strings.TrimSpace(r.FormValue("img")),
	}
	if e.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	_, err := s.app.ToggleFavourite(r.Context(), e)
	s.favouritesChanged(w, r, err)
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.FormValue("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	s.favouritesChanged(w, r, s.app.RemoveFavourite(r.Context(), id))
}

func (s *server) favouritesChanged(w http.ResponseWriter, r *http.Request, err error) {
	toast := ""
	if err != nil {
		if !vault.IsWriteError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		toast = domain.MsgVaultWrite
	}
	snap := s.app.Snapshot()
	s.render(w, r, render.FavouritesChanged(snap.Current, snap.Favourites, toast))
}

func (s *server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.log.Error("渲染失败", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
