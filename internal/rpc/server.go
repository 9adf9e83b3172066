package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region server-struct
// Server exposes a Predictor over gRPC and optionally records every
// prediction in a history store.
type Server struct {
	predictor *predict.Predictor
	store     *history.Store
	logger    *zap.Logger
	maxMsg    int

	grpc   *grpc.Server
	health *health.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHistory records predictions in store and enables ListPredictions.
func WithHistory(store *history.Store) ServerOption {
	return func(s *Server) { s.store = store }
}

// WithServerLogger sets the request logger.
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithMaxMessageBytes bounds request and response sizes.
func WithMaxMessageBytes(n int) ServerOption {
	return func(s *Server) { s.maxMsg = n }
}

// #endregion server-struct

// #region constructor
// NewServer builds the gRPC server and registers the predict and health services.
func NewServer(p *predict.Predictor, opts ...ServerOption) *Server {
	s := &Server{
		predictor: p,
		logger:    zap.NewNop(),
		maxMsg:    DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.grpc = grpc.NewServer(
		grpc.MaxRecvMsgSize(s.maxMsg),
		grpc.MaxSendMsgSize(s.maxMsg),
		grpc.ChainUnaryInterceptor(s.logRequests),
	)
	s.grpc.RegisterService(&serviceDesc, s)

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	servingStatus := healthpb.HealthCheckResponse_SERVING
	if !p.Loaded() {
		servingStatus = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, servingStatus)
	s.health.SetServingStatus("", servingStatus)
	return s
}

// #endregion constructor

// #region lifecycle
// Serve accepts connections on lis until Stop or GracefulStop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is done, then drains.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Serve(lis) })
	g.Go(func() error {
		<-gctx.Done()
		s.GracefulStop()
		return nil
	})
	return g.Wait()
}

// GracefulStop marks the service not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// #endregion lifecycle

// #region predict
// Predict decodes the cube, runs inference and optionally records the result.
func (s *Server) Predict(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req PredictRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, toStatus(fmt.Errorf("%w: %w", errBadRequest, err))
	}
	if len(req.Cube) == 0 {
		return nil, toStatus(fmt.Errorf("%w: cube is empty", errBadRequest))
	}
	cube, err := tensor.ReadRaw(bytes.NewReader(req.Cube))
	if err != nil {
		if errors.Is(err, tensor.ErrShape) {
			return nil, toStatus(err)
		}
		return nil, toStatus(fmt.Errorf("%w: %w", errBadRequest, err))
	}

	field := predict.Field{AreaAcres: req.FieldAreaAcres, FertilizerRateInr: req.FertilizerRateInr}
	res, err := s.predictor.Predict(ctx, cube, field)
	if err != nil {
		return nil, toStatus(err)
	}

	out := predictionFromResult(res)
	out.Owner, out.ImagePath = req.Owner, req.ImageName
	if s.store != nil {
		rec, err := s.store.Save(history.FromResult(res, req.Owner, req.ImageName))
		if err != nil {
			s.logger.Error("save prediction failed", zap.Error(err))
		} else {
			out.ID = rec.ID
			out.CreatedAt = rec.CreatedAt.Format(time.RFC3339Nano)
		}
	}

	resp, err := toStruct(out)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

// #endregion predict

// #region list
// ListPredictions returns saved predictions, newest first.
func (s *Server) ListPredictions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, toStatus(errHistoryDisabled)
	}
	var req ListRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, toStatus(fmt.Errorf("%w: %w", errBadRequest, err))
	}
	records, err := s.store.List(req.Owner, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	out := ListResponse{Predictions: make([]Prediction, 0, len(records))}
	for _, rec := range records {
		out.Predictions = append(out.Predictions, predictionFromRecord(rec))
	}
	resp, err := toStruct(out)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}

// #endregion list

// #region interceptor
func (s *Server) logRequests(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	fields := []zap.Field{
		zap.String("method", info.FullMethod),
		zap.Duration("elapsed", time.Since(start)),
		zap.Stringer("code", status.Code(err)),
	}
	if err != nil {
		s.logger.Warn("rpc failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("rpc served", fields...)
	}
	return resp, err
}

// #endregion interceptor
