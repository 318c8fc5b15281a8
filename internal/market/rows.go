// ==============================
// File: internal/market/rows.go
// ==============================
package market

import (
	"math/big"

	"github.com/rovshanmuradov/heliox/internal/amount"
	"github.com/rovshanmuradov/heliox/internal/ledger"
)

const sellerLabelLen = 15

// QuoteAsset describes the token prices are paid in.
type QuoteAsset struct {
	Symbol   string
	Decimals uint
}

// RowState is the relation between a listing and the signed-in account.
type RowState int

const (
	StateAvailable RowState = iota
	StateOwned
)

// Action is what the row's button does.
type Action string

const (
	ActionBuy    Action = "Buy"
	ActionCancel Action = "Cancel"
)

func (s RowState) Action() Action {
	if s == StateOwned {
		return ActionCancel
	}
	return ActionBuy
}

// Row is one listing as shown in the offers table.
type Row struct {
	Seller         string
	SellerLabel    string
	Quantity       *big.Int
	TotalCost      *big.Int
	TotalCostLabel string
	State          RowState
	Action         Action
}

// MarketSnapshot is the joined result of the marketplace reads.
type MarketSnapshot struct {
	Listings      []ledger.Listing
	PricePerShare *big.Int
	// Account is who was signed in when the load started, empty when
	// nobody was. OwnListed belongs to this account.
	Account string
	// OwnListed is what Account has in escrow, nil when nobody is signed in.
	OwnListed *big.Int
}

// BuildRows derives table rows from a snapshot. A row is Owned when its
// seller is currentAccount; with no account every row is Available.
func BuildRows(snap *MarketSnapshot, currentAccount string, quote QuoteAsset) []Row {
	if snap == nil {
		return nil
	}

	rows := make([]Row, 0, len(snap.Listings))
	for _, l := range snap.Listings {
		state := StateAvailable
		if currentAccount != "" && l.Seller == currentAccount {
			state = StateOwned
		}

		cost, _ := amount.ComputeTotalCost(l.Quantity, snap.PricePerShare)
		rows = append(rows, Row{
			Seller:         l.Seller,
			SellerLabel:    SellerLabel(l.Seller),
			Quantity:       l.Quantity,
			TotalCost:      cost,
			TotalCostLabel: amount.FormatQuote(cost, quote.Decimals, quote.Symbol),
			State:          state,
			Action:         state.Action(),
		})
	}
	return rows
}

// SellerLabel is the first 15 characters of the seller followed by "...".
func SellerLabel(seller string) string {
	r := []rune(seller)
	if len(r) > sellerLabelLen {
		r = r[:sellerLabelLen]
	}
	return string(r) + "..."
}

// PriceLabel formats the snapshot's share price, e.g. "1.50 USDT".
func PriceLabel(snap *MarketSnapshot, quote QuoteAsset) string {
	var price *big.Int
	if snap != nil {
		price = snap.PricePerShare
	}
	return amount.FormatQuote(price, quote.Decimals, quote.Symbol)
}
