package utils

import (
	"github.com/Luismorlan/blockcraft/model"
	"github.com/shopspring/decimal"
)

// ApplyTransaction moves balance of address by tx: the sender pays, the recipient
// receives, a self transfer nets to zero.
func ApplyTransaction(balance decimal.Decimal, tx *model.Transaction, address string) decimal.Decimal {
	if tx.From == address {
		balance = balance.Sub(tx.Amount)
	}
	if tx.To == address {
		balance = balance.Add(tx.Amount)
	}
	return balance
}

// BalanceOf recomputes the balance of address from every transaction of every block.
// There is no account index, so this is O(total transactions).
func BalanceOf(blocks []*model.Block, address string) decimal.Decimal {
	balance := decimal.Zero
	for _, b := range blocks {
		txs := b.Transactions()
		for i := range txs {
			balance = ApplyTransaction(balance, &txs[i], address)
		}
	}
	return balance
}
