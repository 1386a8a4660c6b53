package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Luismorlan/blockcraft/model"
	"github.com/Luismorlan/blockcraft/utils"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

// Wire form of a block. Amounts and the nonce travel as strings so they survive the
// float64 numbers of structpb.
func blockMap(v *model.BlockView) map[string]interface{} {
	txs := make([]interface{}, 0, len(v.Transactions))
	for i := range v.Transactions {
		txs = append(txs, utils.TransactionDocument(&v.Transactions[i]))
	}
	return map[string]interface{}{
		"index":         strconv.FormatUint(v.Index, 10),
		"transactions":  txs,
		"timestamp":     utils.FormatTimestamp(v.Timestamp),
		"previous_hash": v.PreviousHash,
		"nonce":         strconv.FormatUint(v.Nonce, 10),
		"hash":          v.Hash,
	}
}

func BlockToStruct(v model.BlockView) (*structpb.Struct, error) {
	return structpb.NewStruct(blockMap(&v))
}

func BlockFromStruct(s *structpb.Struct) (model.BlockView, error) {
	if s == nil {
		return model.BlockView{}, errors.New("block is nil")
	}
	return blockFromMap(s.AsMap())
}

func BlocksToList(views []model.BlockView) (*structpb.ListValue, error) {
	items := make([]interface{}, 0, len(views))
	for i := range views {
		items = append(items, blockMap(&views[i]))
	}
	return structpb.NewList(items)
}

func BlocksFromList(l *structpb.ListValue) ([]model.BlockView, error) {
	views := make([]model.BlockView, 0, len(l.GetValues()))
	for i, item := range l.AsSlice() {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("block %d is not an object", i)
		}
		v, err := blockFromMap(m)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func TransactionsToList(txs []model.Transaction) (*structpb.ListValue, error) {
	items := make([]interface{}, 0, len(txs))
	for i := range txs {
		items = append(items, utils.TransactionDocument(&txs[i]))
	}
	return structpb.NewList(items)
}

func TransactionsFromList(l *structpb.ListValue) ([]model.Transaction, error) {
	return transactionsFromSlice(l.AsSlice())
}

func blockFromMap(m map[string]interface{}) (model.BlockView, error) {
	var v model.BlockView
	var err error

	if v.Index, err = strconv.ParseUint(stringField(m, "index"), 10, 64); err != nil {
		return model.BlockView{}, fmt.Errorf("invalid block index: %w", err)
	}
	if v.Nonce, err = strconv.ParseUint(stringField(m, "nonce"), 10, 64); err != nil {
		return model.BlockView{}, fmt.Errorf("invalid block nonce: %w", err)
	}
	if v.Timestamp, err = utils.ParseTimestamp(stringField(m, "timestamp")); err != nil {
		return model.BlockView{}, fmt.Errorf("invalid block timestamp: %w", err)
	}
	v.PreviousHash = stringField(m, "previous_hash")
	v.Hash = stringField(m, "hash")
	if !utils.IsHexDigest(v.Hash) {
		return model.BlockView{}, fmt.Errorf("invalid block hash %q", v.Hash)
	}

	items, _ := m["transactions"].([]interface{})
	if v.Transactions, err = transactionsFromSlice(items); err != nil {
		return model.BlockView{}, fmt.Errorf("block %d: %w", v.Index, err)
	}
	return v, nil
}

func transactionsFromSlice(items []interface{}) ([]model.Transaction, error) {
	txs := make([]model.Transaction, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transaction %d is not an object", i)
		}
		tx, err := transactionFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func transactionFromMap(m map[string]interface{}) (model.Transaction, error) {
	var tx model.Transaction
	var err error

	if tx.ID, err = uuid.FromString(stringField(m, "id")); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid id: %w", err)
	}
	if tx.Amount, err = decimal.NewFromString(stringField(m, "amount")); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}
	if tx.Timestamp, err = utils.ParseTimestamp(stringField(m, "timestamp")); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	if tx.Kind, err = model.ParseKind(stringField(m, "type")); err != nil {
		return model.Transaction{}, err
	}
	tx.From = stringField(m, "from")
	tx.To = stringField(m, "to")
	return tx, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
