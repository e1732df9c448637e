// Package backup reads and writes portable copies of the ledger.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"enriquecer/internal/core"
)

// ErrInvalidFile is returned for any import that is not a JSON object holding
// an array of transactions.
var ErrInvalidFile = errors.New("invalid file")

const (
	jsonKey       = "transactions"
	legacyJSONKey = "txs"
)

// Document is the exported file layout.
type Document struct {
	Transactions []core.Transaction `json:"transactions"`
}

// WriteJSON writes txs as an indented {"transactions": [...]} document.
func WriteJSON(w io.Writer, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Transactions: txs}); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// ReadJSON parses an exported document. Records are returned as found; they
// are not validated. Files written by older versions under "txs" are accepted.
func ReadJSON(r io.Reader) ([]core.Transaction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrInvalidFile
	}

	list, ok := doc[jsonKey]
	if !ok {
		list, ok = doc[legacyJSONKey]
	}
	if !ok {
		return nil, ErrInvalidFile
	}
	list = bytes.TrimSpace(list)
	if len(list) == 0 || list[0] != '[' {
		return nil, ErrInvalidFile
	}

	txs := []core.Transaction{}
	if err := json.Unmarshal(list, &txs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return txs, nil
}

// Filename returns the download name for an export taken at now.
func Filename(now time.Time, ext string) string {
	return "enriquecer-dados-" + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}
