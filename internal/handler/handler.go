package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"fsanano/catalog/internal/logger"
	"fsanano/catalog/internal/model"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ItemService interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	GetItem(ctx context.Context, id int) (model.Item, error)
	CreateItem(ctx context.Context, name string, price float64) (int, error)
	UpdateItem(ctx context.Context, id int, name string, price float64) (model.Item, error)
	DeleteItem(ctx context.Context, id int) error
}

type UserService interface {
	ListUsers(ctx context.Context) ([]model.UserWithOrders, error)
	GetUser(ctx context.Context, id int) (model.UserWithOrders, error)
	CreateUser(ctx context.Context, name, email string) (int, error)
	CreateOrder(ctx context.Context, userID, itemID, quantity int) (model.Order, error)
}

type Handler struct {
	router *chi.Mux
	items  ItemService
	users  UserService
	log    *logger.Logger
}

func NewHandler(items ItemService, users UserService, log *logger.Logger) *Handler {
	router := chi.NewRouter()

	compressor := middleware.NewCompressor(5, "application/json", "text/plain")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(compressor.Handler)

	h := &Handler{
		router: router,
		items:  items,
		users:  users,
		log:    log,
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.router.Get("/health", h.HealthCheck)

	h.router.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Post("/{id}", h.CreateOrder)
	})

	h.router.Route("/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.CreateItem)
		r.Get("/{id}", h.GetItem)
		r.Put("/{id}", h.UpdateItem)
		r.Delete("/{id}", h.DeleteItem)
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
