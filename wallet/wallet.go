package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Luismorlan/blockcraft/client"
	"github.com/Luismorlan/blockcraft/utils"
	"github.com/shopspring/decimal"
)

const rpcTimeout = 10 * time.Second

var ErrNotConnected = errors.New("wallet is not connected to a full node")

// LedgerClient is the part of a node connection a wallet needs.
type LedgerClient interface {
	SubmitTransaction(ctx context.Context, from string, to string, amount decimal.Decimal) error
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// Wallet sends transfers on behalf of one address.
type Wallet struct {
	address        string
	FullNodeClient LedgerClient
	closer         func() error
	logger         *slog.Logger
}

func NewWallet(address string, logger *slog.Logger) (*Wallet, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("wallet %w", utils.ErrEmptyAddress)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Wallet{
		address: address,
		logger:  logger.With("wallet", address),
	}, nil
}

func (w *Wallet) Address() string {
	return w.address
}

// SetFullNodeConnection replaces the current node connection, closing the old one.
func (w *Wallet) SetFullNodeConnection(ipAddr string, port string) error {
	c, err := client.Dial(ipAddr, port)
	if err != nil {
		return err
	}
	w.Close()
	w.FullNodeClient = c
	w.closer = c.Close
	w.logger.Info("connected to full node", "addr", ipAddr+":"+port)
	return nil
}

func (w *Wallet) Close() {
	if w.closer == nil {
		return
	}
	if err := w.closer(); err != nil {
		w.logger.Warn("failed to close node connection", "err", err)
	}
	w.closer = nil
}

// GetBalance returns the balance of the wallet address over sealed blocks.
func (w *Wallet) GetBalance() (decimal.Decimal, error) {
	if w.FullNodeClient == nil {
		return decimal.Decimal{}, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	return w.FullNodeClient.GetBalance(ctx, w.address)
}

// TransferMoney checks the sealed balance covers amount and then submits the transfer.
// Pending outgoing transfers are not taken into account.
func (w *Wallet) TransferMoney(receiver string, amount decimal.Decimal) error {
	if err := utils.ValidateTransfer(w.address, receiver, amount); err != nil {
		return err
	}
	balance, err := w.GetBalance()
	if err != nil {
		w.logger.Warn("failed to get balance from full node", "err", err)
		return err
	}
	if err := utils.CheckAffordable(balance, amount); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	if err := w.FullNodeClient.SubmitTransaction(ctx, w.address, strings.TrimSpace(receiver), amount); err != nil {
		w.logger.Warn("failed to send transaction to full node", "err", err)
		return err
	}
	w.logger.Info("transaction sent", "to", receiver, "amount", amount.String())
	return nil
}
