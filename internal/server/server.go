// Package server implements the TCP accept loop and per-connection command
// loop (spec.md §6's "thin glue"): N acceptor goroutines feed a fixed-size
// worker pool, each worker running one connection's sequential RESP
// read-dispatch-write loop to completion, mirroring the teacher's
// errgroup-supervised, zap-logged goroutine shape
// (internal/infrastructure/processmgr) generalized from process supervision
// to connection supervision.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/command"
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/txn"
	"github.com/kvsrv/kvsrv/pkg/fmtt"
)

// Conn is the per-connection state owned by the server and handed to
// command.Dispatch: its transaction context, a correlation id, and a
// cancellation channel closed on disconnect (spec.md §5, design note §9 —
// command code never reaches back into the network layer).
type Conn struct {
	ID     uuid.UUID
	Log    *zap.Logger
	Txn    *txn.Context
	cancel chan struct{}
}

// Server accepts RESP connections and runs their command loops against a
// shared command.Deps.
type Server struct {
	log           *zap.Logger
	deps          command.Deps
	acceptThreads int
	workerThreads int

	connCh chan net.Conn
}

// New constructs a Server. acceptThreads and workerThreads are clamped to at
// least 1 (spec.md §6's accept.threads/worker.threads).
func New(log *zap.Logger, deps command.Deps, acceptThreads, workerThreads int) *Server {
	if acceptThreads < 1 {
		acceptThreads = 1
	}
	if workerThreads < 1 {
		workerThreads = 1
	}
	return &Server{
		log:           log.Named("server"),
		deps:          deps,
		acceptThreads: acceptThreads,
		workerThreads: workerThreads,
		connCh:        make(chan net.Conn, workerThreads),
	}
}

// Run listens on addr and serves connections until ctx is cancelled. It
// supervises the acceptor and worker goroutines with an errgroup, the same
// shape cmd/kvsrv uses to supervise this server alongside the admin HTTP
// server.
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})
	for i := 0; i < s.acceptThreads; i++ {
		g.Go(func() error { return s.acceptLoop(gctx, ln) })
	}
	for i := 0; i < s.workerThreads; i++ {
		g.Go(func() error { return s.workerLoop(gctx) })
	}

	s.log.Info("listening",
		zap.String("addr", addr),
		zap.Int("accept_threads", s.acceptThreads),
		zap.Int("worker_threads", s.workerThreads))

	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case s.connCh <- nc:
		case <-ctx.Done():
			nc.Close()
			return nil
		}
	}
}

func (s *Server) workerLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case nc := <-s.connCh:
			s.serve(nc)
		}
	}
}

func (s *Server) serve(nc net.Conn) {
	defer nc.Close()

	c := &Conn{
		ID:     uuid.New(),
		Txn:    &txn.Context{},
		cancel: make(chan struct{}),
	}
	c.Log = s.log.With(zap.String("conn_id", c.ID.String()))
	defer close(c.cancel)

	c.Log.Info("connection accepted", zap.String("remote", nc.RemoteAddr().String()))
	defer c.Log.Info("connection closed")

	cmdConn := &command.Conn{Txn: c.Txn, Cancel: c.cancel}
	br := bufio.NewReader(nc)

	for {
		argv, err := resp.ReadCommand(br)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.Log.Debug("framing error, dropping connection", zap.Error(err))
			}
			return
		}
		if len(argv) == 0 {
			continue
		}

		reply := command.Dispatch(s.deps, cmdConn, argv)
		reportInternal(c.Log, reply)

		if _, err := nc.Write(reply.Encode()); err != nil {
			c.Log.Debug("write failed, dropping connection", zap.Error(err))
			return
		}
	}
}

const internalErrPrefix = "ERR internal error: "

// reportInternal dumps the offending error at Debug level when a reply
// carries an Internal-class error (spec.md §7); every other reply is
// ignored, since a protocol-visible error is an expected outcome, not a bug.
func reportInternal(log *zap.Logger, reply resp.Reply) {
	e, ok := reply.(resp.Error)
	if !ok {
		return
	}
	msg := string(e)
	if !strings.HasPrefix(msg, internalErrPrefix) {
		return
	}
	fmtt.DumpInternal(log, cmderr.Internal(strings.TrimPrefix(msg, internalErrPrefix)))
}
