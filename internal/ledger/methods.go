// ================================
// File: internal/ledger/methods.go
// ================================
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/rovshanmuradov/heliox/internal/amount"
	"github.com/rovshanmuradov/heliox/internal/near/tx"
)

// ErrInvalidResponse is returned when a contract result does not match the
// method's schema.
var ErrInvalidResponse = errors.New("invalid contract response")

// Method is the name of a contract method.
type Method string

const (
	MethodFTBalanceOf       Method = "ft_balance_of"
	MethodFTTotalSupply     Method = "get_ft_total_supply"
	MethodNFTToken          Method = "nft_token"
	MethodIsInMaintenance   Method = "is_in_maintenance"
	MethodSubmitVehicleData Method = "submit_vehicle_data"
	MethodClaimVehicle      Method = "claim_vehicle"
	MethodGetAllListings    Method = "get_all_listings"
	MethodGetPricePerShare  Method = "get_price_per_share"
	MethodGetListing        Method = "get_listing"
	MethodGetConfig         Method = "get_config"
	MethodFTTransferCall    Method = "ft_transfer_call"
	MethodCancelListing     Method = "cancel_listing"
)

// Gas and deposits attached to mutating calls.
var (
	GasList       = 30 * tx.TGas
	GasBuy        = 200 * tx.TGas
	GasCancel     = 100 * tx.TGas
	GasClaim      = 30 * tx.TGas
	GasSubmitData = 30 * tx.TGas
	OneYocto      = big.NewInt(1)
)

// ListMessage is the ft_transfer_call msg that lists shares on the market.
const ListMessage = "list"

// Contracts names the accounts of the deployed contracts.
type Contracts struct {
	FT     string
	NFT    string
	Market string
	USDT   string
}

// Validate checks that every contract account is set.
func (c Contracts) Validate() error {
	for name, id := range map[string]string{"ft": c.FT, "nft": c.NFT, "market": c.Market, "usdt": c.USDT} {
		if id == "" {
			return fmt.Errorf("contract %s is not configured", name)
		}
	}
	return nil
}

// Requests.

type AccountArgs struct {
	AccountID string `json:"account_id"`
}

type TokenArgs struct {
	TokenID string `json:"token_id"`
}

type SellerArgs struct {
	Seller string `json:"seller"`
}

type AmountArgs struct {
	Amount string `json:"amount"`
}

type VehicleDataArgs struct {
	Mileage     json.Number `json:"mileage"`
	Temperature json.Number `json:"temperature"`
}

type TransferCallArgs struct {
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
	Msg        string `json:"msg"`
}

// BuyMessage is the msg of a USDT transfer that buys listed shares.
type BuyMessage struct {
	Seller string `json:"seller"`
	Shares string `json:"shares"`
}

// Responses.

// TokenMetadata is the subset of NEP-177 metadata the client shows.
type TokenMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media"`
	Extra       string `json:"extra"`
}

// Token is a NEP-171 token view.
type Token struct {
	TokenID  string         `json:"token_id"`
	OwnerID  string         `json:"owner_id"`
	Metadata *TokenMetadata `json:"metadata"`
}

// Listing is shares a seller has put in escrow on the market.
type Listing struct {
	Seller   string
	Quantity *big.Int
}

// MarketConfig is the result of get_config.
type MarketConfig struct {
	VehicleFT string
	USDT      string
}

func invalid(method Method, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidResponse, method, fmt.Sprintf(format, args...))
}

// DecodeU128 validates a U128 result, a JSON string of a base-10 integer.
func DecodeU128(method Method, raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalid(method, "expected U128 string, got %s", truncate(raw))
	}
	v, err := amount.ParseRaw(s)
	if err != nil {
		return nil, invalid(method, "%v", err)
	}
	return v, nil
}

// DecodeBool validates a boolean result.
func DecodeBool(method Method, raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, invalid(method, "expected bool, got %s", truncate(raw))
	}
	return b, nil
}

// DecodeToken validates an nft_token result. null decodes to nil.
func DecodeToken(raw json.RawMessage) (*Token, error) {
	var t *Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, invalid(MethodNFTToken, "%v", err)
	}
	if t != nil && t.TokenID == "" {
		return nil, invalid(MethodNFTToken, "token without token_id")
	}
	return t, nil
}

// DecodeListings validates get_all_listings, an array of [seller, U128] pairs.
func DecodeListings(raw json.RawMessage) ([]Listing, error) {
	var pairs []json.RawMessage
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, invalid(MethodGetAllListings, "expected array, got %s", truncate(raw))
	}

	listings := make([]Listing, 0, len(pairs))
	for i, p := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(p, &pair); err != nil || len(pair) != 2 {
			return nil, invalid(MethodGetAllListings, "entry %d is not a [seller, amount] pair", i)
		}
		var seller string
		if err := json.Unmarshal(pair[0], &seller); err != nil || seller == "" {
			return nil, invalid(MethodGetAllListings, "entry %d has no seller", i)
		}
		qty, err := DecodeU128(MethodGetAllListings, pair[1])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		listings = append(listings, Listing{Seller: seller, Quantity: qty})
	}
	return listings, nil
}

// DecodeConfig validates get_config, a [vehicle_ft, usdt] tuple.
func DecodeConfig(raw json.RawMessage) (MarketConfig, error) {
	var pair []string
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return MarketConfig{}, invalid(MethodGetConfig, "expected [vehicle_ft, usdt], got %s", truncate(raw))
	}
	return MarketConfig{VehicleFT: pair[0], USDT: pair[1]}, nil
}

func truncate(raw json.RawMessage) string {
	const limit = 64
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
