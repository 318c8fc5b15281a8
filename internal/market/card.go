// ==============================
// File: internal/market/card.go
// ==============================
package market

import (
	"math/big"
	"strings"

	"github.com/rovshanmuradov/heliox/internal/amount"
	"github.com/rovshanmuradov/heliox/internal/ledger"
)

const (
	DefaultVehicleTitle = "Vehicle"
	StatusMaintenance   = "MAINTENANCE"
	StatusNormal        = "NORMAL"
	IPFSGateway         = "https://ipfs.io/ipfs/"
)

// VehicleSnapshot is the joined result of the home page reads.
type VehicleSnapshot struct {
	Balance       *big.Int
	TotalSupply   *big.Int
	Token         *ledger.Token
	InMaintenance bool
}

// VehicleCard is the view model of the vehicle card.
type VehicleCard struct {
	TokenID       string
	Title         string
	Description   string
	InMaintenance bool
	StatusLabel   string
	Balance       *big.Int
	BalanceLabel  string
	Percent       float64
	PercentLabel  string
	DocumentURL   string
	Claimable     bool
}

// NewVehicleCard builds the card for tokenID from snap.
func NewVehicleCard(tokenID string, snap *VehicleSnapshot) VehicleCard {
	card := VehicleCard{
		TokenID:     tokenID,
		Title:       DefaultVehicleTitle,
		StatusLabel: StatusNormal,
		Balance:     new(big.Int),
	}
	if snap == nil {
		card.BalanceLabel = "0 Shares"
		card.PercentLabel = amount.FormatPercent(0)
		return card
	}

	if snap.Balance != nil {
		card.Balance = snap.Balance
	}
	card.BalanceLabel = card.Balance.String() + " Shares"
	card.Percent = amount.ComputeSharePercent(card.Balance, snap.TotalSupply)
	card.PercentLabel = amount.FormatPercent(card.Percent)

	card.InMaintenance = snap.InMaintenance
	if snap.InMaintenance {
		card.StatusLabel = StatusMaintenance
	}

	var extra string
	if snap.Token != nil && snap.Token.Metadata != nil {
		md := snap.Token.Metadata
		if strings.TrimSpace(md.Title) != "" {
			card.Title = md.Title
		}
		card.Description = md.Description
		extra = md.Extra
	}
	if extra != "" {
		card.DocumentURL = IPFSGateway + extra
	}

	card.Claimable = snap.TotalSupply != nil && snap.TotalSupply.Sign() > 0 &&
		card.Balance.Cmp(snap.TotalSupply) == 0
	return card
}
