package accounts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type exportedAccount struct {
	Index      uint64 `json:"index"`
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
}

// Export writes the accounts as a JSON array.
func Export(w io.Writer, accounts []*Account) error {
	out := make([]exportedAccount, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, exportedAccount{
			Index:      account.Index,
			Address:    account.Address.Hex(),
			PrivateKey: account.PrivateKeyHex(),
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return nil
}

// ExportFile writes the accounts to path, readable by the owner only.
func ExportFile(path string, accounts []*Account) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Export(file, accounts); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
