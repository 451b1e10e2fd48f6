package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rs/cors"
	"github.com/zenazn/goji/web"

	"github.com/andreyvit/wdb"
)

// Error texts of the HTTP surface. Clients match on them, keep them stable.
const (
	msgDatabaseNotFound   = "database not found"
	msgCollectionNotFound = "collection not found"
	msgKeyNotFound        = "key not found"
	msgNotString          = "value is not a string"
)

type handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler returns the HTTP surface of svc:
//
//	GET  /get/:db/:coll/:key          string value
//	GET  /set/:db/:coll/:key/:value   upsert a string value
//	GET  /delete/:db/:coll/:key       remove a key
//	POST /db/:name                    append a database, returns its index
//	POST /db/:db/coll/:name           append a collection, returns its index
//	GET  /snapshot                    binary World
//	GET  /dump                        text dump
//
// Databases and collections are addressed by position (0..255).
func NewHandler(svc *Service, corsOrigins []string) http.Handler {
	h := &handler{svc: svc, logger: svc.logger}

	m := web.New()
	m.Use(h.logRequests)
	m.Get("/get/:db/:coll/:key", h.get)
	m.Get("/set/:db/:coll/:key/:value", h.set)
	m.Get("/delete/:db/:coll/:key", h.delete)
	m.Post("/db/:db/coll/:name", h.addCollection)
	m.Post("/db/:name", h.addDatabase)
	m.Get("/snapshot", h.snapshot)
	m.Get("/dump", h.dump)
	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown endpoint", http.StatusNotFound)
	})

	if len(corsOrigins) == 0 {
		return m
	}
	return cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(m)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.LogAttrs(r.Context(), slog.LevelDebug, "http", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func parseIndex(c web.C, name string) (uint8, error) {
	v, err := strconv.ParseUint(c.URLParams[name], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s index %q", name, c.URLParams[name])
	}
	return uint8(v), nil
}

func parseIndices(c web.C) (dbIdx, collIdx uint8, err error) {
	dbIdx, err = parseIndex(c, "db")
	if err != nil {
		return
	}
	collIdx, err = parseIndex(c, "coll")
	return
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	var msg string
	switch {
	case errors.Is(err, wdb.ErrDatabaseNotFound):
		code, msg = http.StatusNotFound, msgDatabaseNotFound
	case errors.Is(err, wdb.ErrCollectionNotFound):
		code, msg = http.StatusNotFound, msgCollectionNotFound
	case errors.Is(err, wdb.ErrKeyNotFound):
		code, msg = http.StatusNotFound, msgKeyNotFound
	case errors.Is(err, wdb.ErrTypeMismatch):
		code, msg = http.StatusConflict, msgNotString
	case errors.Is(err, wdb.ErrCapacityExceeded):
		code, msg = http.StatusRequestEntityTooLarge, err.Error()
	default:
		code, msg = http.StatusInternalServerError, "internal error"
		h.logger.LogAttrs(r.Context(), slog.LevelError, "http: failed", slog.String("path", r.URL.Path), slog.Any("err", err))
	}
	http.Error(w, msg, code)
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s)
}

func (h *handler) get(c web.C, w http.ResponseWriter, r *http.Request) {
	dbIdx, collIdx, err := parseIndices(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := h.svc.GetString(dbIdx, collIdx, c.URLParams["key"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeText(w, v)
}

func (h *handler) set(c web.C, w http.ResponseWriter, r *http.Request) {
	dbIdx, collIdx, err := parseIndices(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key := c.URLParams["key"]
	if err := h.svc.SetString(dbIdx, collIdx, key, c.URLParams["value"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeText(w, "ok: set "+key)
}

func (h *handler) delete(c web.C, w http.ResponseWriter, r *http.Request) {
	dbIdx, collIdx, err := parseIndices(c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key := c.URLParams["key"]
	if err := h.svc.Delete(dbIdx, collIdx, key); err != nil {
		h.fail(w, r, err)
		return
	}
	writeText(w, "ok: deleted "+key)
}

func (h *handler) addDatabase(c web.C, w http.ResponseWriter, r *http.Request) {
	idx, err := h.svc.AddDatabase(c.URLParams["name"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeText(w, strconv.Itoa(idx))
}

func (h *handler) addCollection(c web.C, w http.ResponseWriter, r *http.Request) {
	dbIdx, err := parseIndex(c, "db")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	idx, err := h.svc.AddCollection(dbIdx, c.URLParams["name"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeText(w, strconv.Itoa(idx))
}

func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Snapshot()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *handler) dump(w http.ResponseWriter, r *http.Request) {
	writeText(w, h.svc.Dump(wdb.DumpAll))
}
