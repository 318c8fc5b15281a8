// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/heliox/internal/near/tx"
)

// ErrNoCredentials is returned when the credentials directory has no key files.
var ErrNoCredentials = errors.New("no credentials found")

// Wallet is a NEAR account with a full access ed25519 key.
type Wallet struct {
	AccountID  string
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// credentialFile is the layout written by near-cli.
type credentialFile struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	SecretKey  string `json:"secret_key"`
}

// NewWallet builds a wallet from an "ed25519:<base58>" secret key.
func NewWallet(accountID, secretKey string) (*Wallet, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("account id is empty")
	}
	privateKey, err := tx.ParsePrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key for %s: %w", accountID, err)
	}
	return &Wallet{
		AccountID:  accountID,
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// LoadCredentials reads one near-cli credential file.
func LoadCredentials(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}

	accountID := cf.AccountID
	if accountID == "" {
		accountID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	secret := cf.PrivateKey
	if secret == "" {
		secret = cf.SecretKey
	}

	w, err := NewWallet(accountID, secret)
	if err != nil {
		return nil, err
	}

	if cf.PublicKey != "" {
		declared, err := tx.ParsePublicKey(cf.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("credentials %s: %w", path, err)
		}
		if !declared.Equals(w.PublicKey) {
			return nil, fmt.Errorf("credentials %s: public key does not match private key", path)
		}
	}
	return w, nil
}

// ListAccounts returns the account ids with a credential file in dir, sorted.
func ListAccounts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials dir: %w", err)
	}

	var accounts []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(accounts)
	return accounts, nil
}

// Load returns the wallet for accountID from dir. With an empty accountID
// the first account in ListAccounts order is used.
func Load(dir, accountID string) (*Wallet, error) {
	if accountID == "" {
		accounts, err := ListAccounts(dir)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoCredentials, dir)
		}
		accountID = accounts[0]
	}

	path := filepath.Join(dir, accountID+".json")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s in %s", ErrNoCredentials, accountID, dir)
	}
	return LoadCredentials(path)
}

// CredentialsDir expands the credentials root for a network, e.g.
// "~/.near-credentials" + "testnet".
func CredentialsDir(root, networkID string) (string, error) {
	if strings.HasPrefix(root, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	return filepath.Join(root, networkID), nil
}

// SignTransaction signs t with the wallet key.
func (w *Wallet) SignTransaction(t *tx.Transaction) (*tx.SignedTransaction, error) {
	return tx.Sign(t, w.PrivateKey)
}

// PublicKeyString returns the key in "ed25519:<base58>" form.
func (w *Wallet) PublicKeyString() string {
	return tx.PublicKeyString(w.PublicKey)
}

// String returns the account id.
func (w *Wallet) String() string {
	return w.AccountID
}
