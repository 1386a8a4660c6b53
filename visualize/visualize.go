package visualize

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Luismorlan/blockcraft/model"
	"github.com/bradleyjkemp/memviz"
)

// Flattened copies of the model types, holding only what is worth drawing.
type transaction struct {
	id     string
	from   string
	to     string
	amount string
	kind   string
}

type block struct {
	index    uint64
	hash     string
	prevHash string
	nonce    uint64
	txs      []transaction
	next     *block
}

// Hashes and ids are just too long to render, instead we take only first 3 and last 3
// characters and replace the middle part with '...'. E.g. "abcdefghi" will be rendered as "abc...ghi"
func shortenString(s string) string {
	if len(s) < 9 {
		return s
	}
	return fmt.Sprintf("%s...%s", s[0:3], s[len(s)-3:])
}

func txToTx(tx *model.Transaction) transaction {
	return transaction{
		id:     shortenString(tx.ID.String()),
		from:   tx.From,
		to:     tx.To,
		amount: tx.Amount.String(),
		kind:   tx.Kind.String(),
	}
}

func blockToBlock(b *model.BlockView) *block {
	n := &block{
		index:    b.Index,
		hash:     shortenString(b.Hash),
		prevHash: shortenString(b.PreviousHash),
		nonce:    b.Nonce,
	}
	for i := range b.Transactions {
		n.txs = append(n.txs, txToTx(&b.Transactions[i]))
	}
	return n
}

// constructData links the last d+1 blocks of chain, oldest first.
func constructData(chain []model.BlockView, d int) *block {
	if len(chain) == 0 {
		return nil
	}
	start := len(chain) - 1 - d
	if d < 0 || start < 0 {
		start = 0
	}
	root := blockToBlock(&chain[start])
	tail := root
	for i := start + 1; i < len(chain); i++ {
		tail.next = blockToBlock(&chain[i])
		tail = tail.next
	}
	return root
}

// Render writes the dot graph of the tail of chain, from the d-th block before the
// latest one.
func Render(w io.Writer, chain []model.BlockView, d int) {
	root := constructData(chain, d)
	memviz.Map(w, root)
}

// RenderToFile writes the dot graph under dir and, when graphviz is installed, renders it
// to a png next to it. It returns the path of the last file written.
func RenderToFile(chain []model.BlockView, d int, dir string, id string) (string, error) {
	buf := &bytes.Buffer{}
	Render(buf, chain, d)

	fileName := filepath.Join(dir, "chaindata-"+id)
	if err := os.WriteFile(fileName, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	if _, err := exec.LookPath("dot"); err != nil {
		return fileName, nil
	}
	outputName := filepath.Join(dir, "rendered-chain-"+id+".png")
	if err := exec.Command("dot", "-Tpng", fileName, "-o", outputName).Run(); err != nil {
		return fileName, fmt.Errorf("dot failed: %w", err)
	}
	return outputName, nil
}
