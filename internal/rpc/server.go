package rpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/gate"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/metrics"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/store"
)

// #region run-store
// RunStore persists and loads audit reports. *store.Store implements it.
type RunStore interface {
	SaveRun(r audit.Report) (string, error)
	GetRun(id string) (audit.Report, error)
}
// #endregion run-store

// #region server
// Server implements AuditServiceServer on top of an audit harness.
type Server struct {
	base    audit.Config
	runs    RunStore
	battery []gate.SubTest
	logger  *slog.Logger
}

// NewServer builds a server that runs audits from base. runs may be nil,
// in which case reports are returned but never stored.
func NewServer(base audit.Config, runs RunStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{base: base, runs: runs, logger: logger}
}

// WithBattery replaces the default sub-test battery.
func (s *Server) WithBattery(battery []gate.SubTest) *Server {
	s.battery = battery
	return s
}

// RunAudit runs one audit with the request's overrides applied.
func (s *Server) RunAudit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := parseRunRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	cfg := req.apply(s.base)

	h, err := audit.NewHarnessWithBattery(cfg, s.logger, s.battery)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	report, err := h.Run(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, status.FromContextError(ctxErr).Err()
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	if s.runs != nil {
		if _, err := s.runs.SaveRun(report); err != nil {
			s.logger.Error("persist run failed", "run_id", report.RunID, "err", err)
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	out, err := ReportToStruct(report)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// GetRun loads a stored report by run_id.
func (s *Server) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.runs == nil {
		return nil, status.Error(codes.FailedPrecondition, "no run store configured")
	}
	id := in.GetFields()["run_id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}

	report, err := s.runs.GetRun(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := ReportToStruct(report)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
// #endregion server

// #region grpc-server
// MetricsInterceptor counts every unary call by method and status code.
func MetricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	method := info.FullMethod[strings.LastIndex(info.FullMethod, "/")+1:]
	metrics.RPCRequests.WithLabelValues(method, status.Code(err).String()).Inc()
	return resp, err
}

// NewGRPCServer registers srv and the standard health service on a new
// grpc.Server. The audit service starts as SERVING.
func NewGRPCServer(srv AuditServiceServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(MetricsInterceptor))
	gs := grpc.NewServer(opts...)
	RegisterAuditServiceServer(gs, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return gs, hs
}
// #endregion grpc-server
