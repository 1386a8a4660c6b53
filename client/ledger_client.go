package client

import (
	"context"
	"fmt"
	"net"

	"github.com/Luismorlan/blockcraft/model"
	"github.com/Luismorlan/blockcraft/service"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// LedgerClient talks to the LedgerService of a node and converts its replies to model types.
type LedgerClient struct {
	conn *grpc.ClientConn
	rpc  service.LedgerServiceClient
}

// Dial connects to a node at ipAddr:port.
func Dial(ipAddr string, port string, opts ...grpc.DialOption) (*LedgerClient, error) {
	opts = append(opts, grpc.WithInsecure())
	serverAddr := net.JoinHostPort(ipAddr, port)
	conn, err := grpc.Dial(serverAddr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", serverAddr, err)
	}
	return &LedgerClient{
		conn: conn,
		rpc:  service.NewLedgerServiceClient(conn),
	}, nil
}

// NewLedgerClient wraps an existing connection. Close is then a no-op.
func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{
		rpc: service.NewLedgerServiceClient(cc),
	}
}

func (c *LedgerClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *LedgerClient) SubmitTransaction(ctx context.Context, from string, to string, amount decimal.Decimal) error {
	req, err := structpb.NewStruct(map[string]interface{}{
		"from":   from,
		"to":     to,
		"amount": amount.String(),
	})
	if err != nil {
		return err
	}
	_, err = c.rpc.SubmitTransaction(ctx, req)
	return err
}

// Mine asks the node to mine its pending pool and returns the sealed block.
// Cancelling ctx abandons the search on the node too.
func (c *LedgerClient) Mine(ctx context.Context, rewardAddress string) (model.BlockView, error) {
	resp, err := c.rpc.Mine(ctx, wrapperspb.String(rewardAddress))
	if err != nil {
		return model.BlockView{}, err
	}
	return service.BlockFromStruct(resp)
}

func (c *LedgerClient) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	resp, err := c.rpc.GetBalance(ctx, wrapperspb.String(address))
	if err != nil {
		return decimal.Decimal{}, err
	}
	balance, err := decimal.NewFromString(resp.GetValue())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed balance %q: %w", resp.GetValue(), err)
	}
	return balance, nil
}

func (c *LedgerClient) GetChain(ctx context.Context) ([]model.BlockView, error) {
	resp, err := c.rpc.GetChain(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return service.BlocksFromList(resp)
}

func (c *LedgerClient) GetPending(ctx context.Context) ([]model.Transaction, error) {
	resp, err := c.rpc.GetPending(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return service.TransactionsFromList(resp)
}

func (c *LedgerClient) IsValid(ctx context.Context) (bool, error) {
	resp, err := c.rpc.IsValid(ctx, &emptypb.Empty{})
	if err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}
