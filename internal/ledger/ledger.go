// ===============================
// File: internal/ledger/ledger.go
// ===============================
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/rovshanmuradov/heliox/internal/session"
)

// Ledger binds the contract methods to a session.
type Ledger struct {
	session   session.Session
	contracts Contracts
}

// New creates a Ledger for the given contracts.
func New(s session.Session, contracts Contracts) *Ledger {
	return &Ledger{session: s, contracts: contracts}
}

// Contracts returns the configured contract accounts.
func (l *Ledger) Contracts() Contracts {
	return l.contracts
}

func (l *Ledger) view(ctx context.Context, contractID string, method Method, args any) (json.RawMessage, error) {
	return l.session.ViewFunction(ctx, contractID, string(method), args)
}

func (l *Ledger) call(ctx context.Context, contractID string, method Method, args any, gas uint64, deposit *big.Int) (json.RawMessage, error) {
	return l.session.CallFunction(ctx, session.FunctionCall{
		ContractID: contractID,
		Method:     string(method),
		Args:       args,
		Gas:        gas,
		Deposit:    deposit,
	})
}

// BalanceOf returns the share balance of account.
func (l *Ledger) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	raw, err := l.view(ctx, l.contracts.FT, MethodFTBalanceOf, AccountArgs{AccountID: account})
	if err != nil {
		return nil, err
	}
	return DecodeU128(MethodFTBalanceOf, raw)
}

// TotalSupply returns the total share supply recorded by the vehicle NFT.
func (l *Ledger) TotalSupply(ctx context.Context) (*big.Int, error) {
	raw, err := l.view(ctx, l.contracts.NFT, MethodFTTotalSupply, struct{}{})
	if err != nil {
		return nil, err
	}
	return DecodeU128(MethodFTTotalSupply, raw)
}

// Token returns the vehicle token, or nil if it does not exist.
func (l *Ledger) Token(ctx context.Context, tokenID string) (*Token, error) {
	raw, err := l.view(ctx, l.contracts.NFT, MethodNFTToken, TokenArgs{TokenID: tokenID})
	if err != nil {
		return nil, err
	}
	return DecodeToken(raw)
}

// InMaintenance reports the vehicle maintenance flag.
func (l *Ledger) InMaintenance(ctx context.Context) (bool, error) {
	raw, err := l.view(ctx, l.contracts.NFT, MethodIsInMaintenance, struct{}{})
	if err != nil {
		return false, err
	}
	return DecodeBool(MethodIsInMaintenance, raw)
}

// AllListings returns every open listing.
func (l *Ledger) AllListings(ctx context.Context) ([]Listing, error) {
	raw, err := l.view(ctx, l.contracts.Market, MethodGetAllListings, struct{}{})
	if err != nil {
		return nil, err
	}
	return DecodeListings(raw)
}

// PricePerShare returns the share price in the quote token's smallest unit.
func (l *Ledger) PricePerShare(ctx context.Context) (*big.Int, error) {
	raw, err := l.view(ctx, l.contracts.Market, MethodGetPricePerShare, struct{}{})
	if err != nil {
		return nil, err
	}
	return DecodeU128(MethodGetPricePerShare, raw)
}

// ListingOf returns the quantity seller has listed, zero if none.
func (l *Ledger) ListingOf(ctx context.Context, seller string) (*big.Int, error) {
	raw, err := l.view(ctx, l.contracts.Market, MethodGetListing, SellerArgs{Seller: seller})
	if err != nil {
		return nil, err
	}
	return DecodeU128(MethodGetListing, raw)
}

// MarketConfig returns the token contracts the market was deployed with.
func (l *Ledger) MarketConfig(ctx context.Context) (MarketConfig, error) {
	raw, err := l.view(ctx, l.contracts.Market, MethodGetConfig, struct{}{})
	if err != nil {
		return MarketConfig{}, err
	}
	return DecodeConfig(raw)
}

// ListShares moves quantity shares into market escrow.
func (l *Ledger) ListShares(ctx context.Context, quantity string) error {
	return l.transferCall(ctx, l.contracts.FT, quantity, ListMessage, GasList)
}

// BuyShares pays totalCost in USDT for shares listed by seller.
func (l *Ledger) BuyShares(ctx context.Context, seller, shares, totalCost string) error {
	msg, err := json.Marshal(BuyMessage{Seller: seller, Shares: shares})
	if err != nil {
		return fmt.Errorf("encode buy message: %w", err)
	}
	return l.transferCall(ctx, l.contracts.USDT, totalCost, string(msg), GasBuy)
}

// transferCall sends amount of token to the market. The result is the
// amount the market kept; anything less than amount was refunded because
// the market rejected the transfer.
func (l *Ledger) transferCall(ctx context.Context, token, amount, msg string, gas uint64) error {
	raw, err := l.call(ctx, token, MethodFTTransferCall, TransferCallArgs{
		ReceiverID: l.contracts.Market,
		Amount:     amount,
		Msg:        msg,
	}, gas, OneYocto)
	if err != nil {
		return err
	}

	used, err := DecodeU128(MethodFTTransferCall, raw)
	if err != nil {
		return err
	}
	requested, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return fmt.Errorf("invalid transfer amount %q", amount)
	}
	if used.Cmp(requested) < 0 {
		return fmt.Errorf("%w: market accepted %s of %s, the rest was refunded", session.ErrNotAuthorized, used, requested)
	}
	return nil
}

// CancelListing withdraws quantity shares from escrow.
func (l *Ledger) CancelListing(ctx context.Context, quantity string) error {
	_, err := l.call(ctx, l.contracts.Market, MethodCancelListing, AmountArgs{Amount: quantity}, GasCancel, nil)
	return err
}

// SubmitVehicleData records sensor readings on the vehicle NFT.
func (l *Ledger) SubmitVehicleData(ctx context.Context, mileage, temperature json.Number) error {
	_, err := l.call(ctx, l.contracts.NFT, MethodSubmitVehicleData, VehicleDataArgs{
		Mileage:     mileage,
		Temperature: temperature,
	}, GasSubmitData, nil)
	return err
}

// ClaimVehicle asks the NFT contract to hand the vehicle to a 100% holder.
// The result is false when the contract returned no value.
func (l *Ledger) ClaimVehicle(ctx context.Context, tokenID string) (bool, error) {
	raw, err := l.call(ctx, l.contracts.NFT, MethodClaimVehicle, TokenArgs{TokenID: tokenID}, GasClaim, nil)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	return DecodeBool(MethodClaimVehicle, raw)
}
