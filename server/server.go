package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/andreyvit/wdb"
)

// Server ties a Service to its snapshot store and HTTP listener.
type Server struct {
	cfg    *Config
	logger *slog.Logger
	store  *wdb.SnapshotStore
	svc    *Service
}

// Open prepares the store and restores the last snapshot. When nothing was
// restored and cfg.Store.Demo is set, the sample world is loaded instead.
func Open(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	sopt := wdb.SnapshotOptions{
		Context: ctx,
		Logger:  logger,
		Verbose: logger.Enabled(ctx, slog.LevelDebug),
	}
	var store *wdb.SnapshotStore
	if cfg.Store.Path != "" {
		var err error
		store, err = wdb.OpenSnapshotStore(cfg.Store.Path, sopt)
		if err != nil {
			return nil, err
		}
	} else {
		store = wdb.NewMemSnapshotStore(sopt)
	}

	svc := New(nil, Options{
		Context:      ctx,
		Logger:       logger,
		Store:        store,
		SnapshotName: cfg.Store.Snapshot,
		Verbose:      sopt.Verbose,
	})
	restored, err := svc.Restore()
	if err != nil {
		store.Close()
		return nil, err
	}
	if !restored && cfg.Store.Demo {
		svc.Write(func(w *wdb.World) error {
			*w = *wdb.DemoWorld()
			return nil
		})
		logger.LogAttrs(ctx, slog.LevelInfo, "wdb: loaded demo world")
	}

	return &Server{cfg: cfg, logger: logger, store: store, svc: svc}, nil
}

func (s *Server) Service() *Service {
	return s.svc
}

func (s *Server) Handler() http.Handler {
	return NewHandler(s.svc, s.cfg.Server.CORSOrigins)
}

// Serve listens until ctx is cancelled, then shuts down and calls Close.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		s.Close()
		return err
	}
	hs := &http.Server{
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "wdb: listening", slog.String("addr", ln.Addr().String()))

	errc := make(chan error, 1)
	go func() {
		errc <- hs.Serve(ln)
	}()

	select {
	case err = <-errc:
	case <-ctx.Done():
		delay := time.Duration(s.cfg.Server.ShutdownDelay) * time.Second
		sctx, cancel := context.WithTimeout(context.Background(), delay)
		err = hs.Shutdown(sctx)
		cancel()
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return errors.Join(err, s.Close())
}

// Close saves the snapshot, writes the dump file if configured and closes
// the store.
func (s *Server) Close() error {
	_, saveErr := s.svc.Save()
	var dumpErr error
	if s.cfg.Store.DumpFile != "" {
		dumpErr = s.writeDumpFile(s.cfg.Store.DumpFile)
	}
	return errors.Join(saveErr, dumpErr, s.store.Close())
}

func (s *Server) writeDumpFile(path string) error {
	data, err := s.svc.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		return fmt.Errorf("dump file: %w", err)
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "wdb: wrote dump file", slog.String("file", path), slog.String("size", humanize.Bytes(uint64(len(data)))))
	return nil
}
