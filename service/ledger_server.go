package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Luismorlan/blockcraft/ledger"
	"github.com/Luismorlan/blockcraft/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// LedgerServer exposes a Ledger to local shells and wallets.
type LedgerServer struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewLedgerServer(l *ledger.Ledger, logger *slog.Logger) *LedgerServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerServer{
		ledger: l,
		logger: logger,
	}
}

// NewGRPCServer creates a gRPC server with the ledger service registered and every
// call logged.
func NewGRPCServer(l *ledger.Ledger, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	srv := NewLedgerServer(l, logger)
	opts = append(opts, grpc.UnaryInterceptor(srv.logCall))
	s := grpc.NewServer(opts...)
	RegisterLedgerServiceServer(s, srv)
	return s
}

func (sev *LedgerServer) logCall(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		sev.logger.Warn("rpc failed", "method", info.FullMethod, "code", status.Code(err).String(), "err", err)
	} else {
		sev.logger.Debug("rpc served", "method", info.FullMethod, "elapsed", time.Since(start).String())
	}
	return resp, err
}

func (sev *LedgerServer) SubmitTransaction(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	fields := req.GetFields()
	amount, err := utils.ParseAmount(fields["amount"].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	_, err = sev.ledger.SubmitTransaction(fields["from"].GetStringValue(), fields["to"].GetStringValue(), amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Mine blocks until a block is sealed or the caller goes away.
func (sev *LedgerServer) Mine(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	view, err := sev.ledger.MinePending(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	s, err := BlockToStruct(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode block: %v", err)
	}
	return s, nil
}

func (sev *LedgerServer) GetBalance(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(sev.ledger.GetBalance(req.GetValue()).String()), nil
}

func (sev *LedgerServer) GetChain(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	l, err := BlocksToList(sev.ledger.GetChainSnapshot())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode chain: %v", err)
	}
	return l, nil
}

func (sev *LedgerServer) GetPending(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	l, err := TransactionsToList(sev.ledger.GetPendingSnapshot())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode pending pool: %v", err)
	}
	return l, nil
}

func (sev *LedgerServer) IsValid(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(sev.ledger.IsValid()), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, utils.ErrEmptyAddress),
		errors.Is(err, utils.ErrInvalidAmount),
		errors.Is(err, utils.ErrNonPositiveAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ledger.ErrMiningInProgress):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
