package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/cockroachdb/errors"

	"github.com/leengari/linkplanner/internal/collection"
	"github.com/leengari/linkplanner/internal/parser"
	"github.com/leengari/linkplanner/internal/plan"
	"github.com/leengari/linkplanner/internal/planner"
)

// Request asks for the plan of one specification over collections of the
// given sizes
type Request struct {
	Specification string `json:"specification"`
	SourceSize    int    `json:"source_size"`
	TargetSize    int    `json:"target_size"`
}

// Response carries either a plan summary or an error
type Response struct {
	Tree        string  `json:"tree,omitempty"`
	RuntimeCost float64 `json:"runtime_cost"`
	MappingSize float64 `json:"mapping_size"`
	Selectivity float64 `json:"selectivity"`
	Strategy    string  `json:"strategy,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Server answers planning requests, one JSON object per request, over TCP.
// A single planner is shared by every connection.
type Server struct {
	planner *planner.Planner
}

func NewServer(p *planner.Planner) *Server {
	return &Server{planner: p}
}

// ListenAndServe binds addr and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "binding %s", addr)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	slog.Info("planner listening", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			if err == io.EOF {
				return
			}
			slog.Error("decode error", "error", err)
			_ = encoder.Encode(&Response{Error: fmt.Sprintf("invalid request format: %v", err)})
			return
		}

		if req.Specification == "exit" || req.Specification == "\\q" {
			return
		}

		if err := encoder.Encode(s.handle(ctx, req)); err != nil {
			slog.Error("encode error", "error", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) *Response {
	node, err := parser.ParseSpecification(req.Specification)
	if err != nil {
		return &Response{Error: err.Error()}
	}
	if ctx.Err() != nil {
		return &Response{Error: ctx.Err().Error()}
	}
	result, err := s.planner.PlanFor(node, collection.Fixed(req.SourceSize), collection.Fixed(req.TargetSize))
	if err != nil {
		return &Response{Error: err.Error()}
	}
	return &Response{
		Tree:        plan.PrintTree(result),
		RuntimeCost: result.RuntimeCost,
		MappingSize: result.MappingSize,
		Selectivity: result.Selectivity,
		Strategy:    result.Strategy(),
	}
}
