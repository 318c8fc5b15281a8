// internal/near/tx/tx.go
package tx

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// TGas is one teragas.
const TGas uint64 = 1_000_000_000_000

const (
	keyTypeED25519     uint8 = 0
	actionFunctionCall uint8 = 2
)

const (
	ed25519KeyPrefix = "ed25519:"
	u128Size         = 16
	publicKeySize    = 32
	privateKeySize   = 64
)

var (
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidBlockHash = errors.New("invalid block hash")
	ErrDepositTooLarge  = errors.New("deposit does not fit in u128")
	ErrNoActions        = errors.New("transaction has no actions")
)

// FunctionCall is the only action kind the client submits.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    *big.Int // yoctoNEAR, nil means zero
}

// Transaction is an unsigned NEAR transaction.
type Transaction struct {
	SignerID   string
	PublicKey  solana.PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []FunctionCall
}

// MarshalBorsh returns the Borsh encoding of the transaction.
func (t *Transaction) MarshalBorsh() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Transaction) encode(enc *bin.Encoder) error {
	if len(t.Actions) == 0 {
		return ErrNoActions
	}
	if err := enc.WriteString(t.SignerID); err != nil {
		return err
	}
	if err := enc.WriteUint8(keyTypeED25519); err != nil {
		return err
	}
	if err := enc.WriteBytes(t.PublicKey[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(t.Nonce, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteString(t.ReceiverID); err != nil {
		return err
	}
	if err := enc.WriteBytes(t.BlockHash[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(t.Actions)), bin.LE); err != nil {
		return err
	}
	for i := range t.Actions {
		if err := t.Actions[i].encode(enc); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func (a *FunctionCall) encode(enc *bin.Encoder) error {
	deposit, err := u128LE(a.Deposit)
	if err != nil {
		return err
	}
	if err := enc.WriteUint8(actionFunctionCall); err != nil {
		return err
	}
	if err := enc.WriteString(a.MethodName); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Args, true); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Gas, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(deposit, false)
}

// Hash returns sha256 of the encoded transaction, the value that is signed
// and that identifies the transaction on chain.
func (t *Transaction) Hash() ([32]byte, error) {
	raw, err := t.MarshalBorsh()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(raw), nil
}

// SignedTransaction is a transaction with its ed25519 signature.
type SignedTransaction struct {
	Transaction Transaction
	Signature   solana.Signature
	hash        [32]byte
}

// Sign signs the transaction hash with key. The key must match the
// transaction's public key.
func Sign(t *Transaction, key solana.PrivateKey) (*SignedTransaction, error) {
	if len(key) != privateKeySize {
		return nil, ErrInvalidKey
	}
	if !key.PublicKey().Equals(t.PublicKey) {
		return nil, fmt.Errorf("%w: key does not match transaction public key", ErrInvalidKey)
	}

	hash, err := t.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(hash[:])
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	return &SignedTransaction{Transaction: *t, Signature: sig, hash: hash}, nil
}

// MarshalBorsh returns the encoding sent to broadcast_tx_*.
func (s *SignedTransaction) MarshalBorsh() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := s.Transaction.encode(enc); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(keyTypeED25519); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(s.Signature[:], false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HashBase58 is the transaction hash as shown by explorers and RPC.
func (s *SignedTransaction) HashBase58() string {
	return base58.Encode(s.hash[:])
}

// PublicKeyString formats a key the way NEAR RPC expects it.
func PublicKeyString(pk solana.PublicKey) string {
	return ed25519KeyPrefix + base58.Encode(pk[:])
}

// ParsePublicKey parses "ed25519:<base58>".
func ParsePublicKey(s string) (solana.PublicKey, error) {
	raw, ok := strings.CutPrefix(s, ed25519KeyPrefix)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("%w: unsupported key type in %q", ErrInvalidKey, s)
	}
	b, err := base58.Decode(raw)
	if err != nil || len(b) != publicKeySize {
		return solana.PublicKey{}, fmt.Errorf("%w: bad public key %q", ErrInvalidKey, s)
	}
	return solana.PublicKeyFromBytes(b), nil
}

// ParsePrivateKey parses "ed25519:<base58 of 64 bytes>".
func ParsePrivateKey(s string) (solana.PrivateKey, error) {
	raw, ok := strings.CutPrefix(s, ed25519KeyPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type", ErrInvalidKey)
	}
	key, err := solana.PrivateKeyFromBase58(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != privateKeySize {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidKey, len(key))
	}
	return key, nil
}

// DecodeBlockHash decodes a base58 block hash.
func DecodeBlockHash(s string) ([32]byte, error) {
	var out [32]byte
	b, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidBlockHash, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("%w: length %d", ErrInvalidBlockHash, len(b))
	}
	copy(out[:], b)
	return out, nil
}

func u128LE(v *big.Int) ([]byte, error) {
	out := make([]byte, u128Size)
	if v == nil {
		return out, nil
	}
	if v.Sign() < 0 || v.BitLen() > 128 {
		return nil, ErrDepositTooLarge
	}
	v.FillBytes(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
