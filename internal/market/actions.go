// =================================
// File: internal/market/actions.go
// =================================
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/amount"
	"github.com/rovshanmuradov/heliox/internal/ledger"
	"github.com/rovshanmuradov/heliox/internal/session"
)

// Writer is the mutating side of the ledger.
type Writer interface {
	ListShares(ctx context.Context, quantity string) error
	BuyShares(ctx context.Context, seller, shares, totalCost string) error
	CancelListing(ctx context.Context, quantity string) error
	SubmitVehicleData(ctx context.Context, mileage, temperature json.Number) error
	ClaimVehicle(ctx context.Context, tokenID string) (bool, error)
}

// Refresher reloads whatever a successful mutation invalidated.
type Refresher interface {
	Refresh()
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func()

func (f RefreshFunc) Refresh() { f() }

// Journal records mutating calls and their outcome.
type Journal interface {
	Record(account, action, contract, quantity, outcome string)
}

// Names of the mutating actions in logs and the journal.
const (
	NameList       = "list"
	NameBuy        = "buy"
	NameCancel     = "cancel"
	NameSubmitData = "submit_data"
	NameClaim      = "claim"
)

// Outcomes written to the journal.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// ActionsConfig holds the asset parameters actions convert with.
type ActionsConfig struct {
	Contracts     ledger.Contracts
	ShareDecimals uint
	Quote         QuoteAsset
}

// Actions validates user input and issues exactly one mutating call per
// invocation. Failures are returned to the caller and never retried.
type Actions struct {
	writer   Writer
	accounts AccountSource
	cfg      ActionsConfig
	journal  Journal
	logger   *zap.Logger
}

func NewActions(writer Writer, accounts AccountSource, cfg ActionsConfig, journal Journal, logger *zap.Logger) *Actions {
	return &Actions{
		writer:   writer,
		accounts: accounts,
		cfg:      cfg,
		journal:  journal,
		logger:   logger.Named("actions"),
	}
}

// ListShares puts quantity shares up for sale.
func (a *Actions) ListShares(ctx context.Context, quantity string, r Refresher) error {
	if strings.TrimSpace(quantity) == "" {
		return fmt.Errorf("%w: quantity is required", amount.ErrInvalidAmount)
	}
	raw, err := amount.ToContract(quantity, a.cfg.ShareDecimals)
	if err != nil {
		return err
	}
	if raw == "0" {
		return fmt.Errorf("%w: quantity must be positive", amount.ErrInvalidAmount)
	}
	account, err := a.account()
	if err != nil {
		return err
	}

	return a.run(account, NameList, a.cfg.Contracts.FT, raw, r, func() error {
		return a.writer.ListShares(ctx, raw)
	})
}

// Buy pays the row's total cost for all of its shares.
func (a *Actions) Buy(ctx context.Context, row Row, r Refresher) error {
	if row.Quantity == nil || row.Quantity.Sign() <= 0 || row.TotalCost == nil || row.TotalCost.Sign() <= 0 {
		return fmt.Errorf("%w: listing has no quantity or price", amount.ErrInvalidAmount)
	}
	account, err := a.account()
	if err != nil {
		return err
	}

	shares := row.Quantity.String()
	cost := row.TotalCost.String()
	return a.run(account, NameBuy, a.cfg.Contracts.USDT, cost, r, func() error {
		return a.writer.BuyShares(ctx, row.Seller, shares, cost)
	})
}

// Cancel withdraws the row's shares from escrow.
func (a *Actions) Cancel(ctx context.Context, row Row, r Refresher) error {
	if row.Quantity == nil || row.Quantity.Sign() <= 0 {
		return fmt.Errorf("%w: listing has no quantity", amount.ErrInvalidAmount)
	}
	account, err := a.account()
	if err != nil {
		return err
	}

	quantity := row.Quantity.String()
	return a.run(account, NameCancel, a.cfg.Contracts.Market, quantity, r, func() error {
		return a.writer.CancelListing(ctx, quantity)
	})
}

// SubmitVehicleData sends sensor readings to the vehicle contract.
func (a *Actions) SubmitVehicleData(ctx context.Context, mileage, temperature string, r Refresher) error {
	m, err := parseReading("mileage", mileage)
	if err != nil {
		return err
	}
	t, err := parseReading("temperature", temperature)
	if err != nil {
		return err
	}
	account, err := a.account()
	if err != nil {
		return err
	}

	return a.run(account, NameSubmitData, a.cfg.Contracts.NFT, string(m)+"/"+string(t), r, func() error {
		return a.writer.SubmitVehicleData(ctx, m, t)
	})
}

// ClaimVehicle claims the vehicle NFT for a holder of the full supply.
func (a *Actions) ClaimVehicle(ctx context.Context, tokenID string, r Refresher) error {
	account, err := a.account()
	if err != nil {
		return err
	}

	return a.run(account, NameClaim, a.cfg.Contracts.NFT, tokenID, r, func() error {
		claimed, err := a.writer.ClaimVehicle(ctx, tokenID)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: vehicle was not claimed", session.ErrNotAuthorized)
		}
		return nil
	})
}

func (a *Actions) account() (string, error) {
	account, ok := a.accounts.CurrentAccount()
	if !ok {
		return "", session.ErrNoAccount
	}
	return account, nil
}

func (a *Actions) run(account, action, contract, quantity string, r Refresher, call func() error) error {
	logger := a.logger.With(
		zap.String("action", action),
		zap.String("account", account),
		zap.String("contract", contract),
		zap.String("amount", quantity))

	logger.Info("Submitting action")
	err := call()

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	if a.journal != nil {
		a.journal.Record(account, action, contract, quantity, outcome)
	}

	if err != nil {
		logger.Error("Action failed", zap.Error(err))
		return fmt.Errorf("%s: %w", action, err)
	}

	logger.Info("Action succeeded")
	if r != nil {
		r.Refresh()
	}
	return nil
}

func parseReading(name, value string) (json.Number, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", amount.ErrInvalidAmount, name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q is not a number", amount.ErrInvalidAmount, name, value)
	}
	return json.Number(d.String()), nil
}

// User facing messages for the error taxonomy.
const (
	MsgInvalidAmount      = "Enter a valid quantity"
	MsgNotAuthorized      = "Rejected by the contract: you are probably not the owner"
	MsgNetworkUnavailable = "Network unavailable, try again"
	MsgNoAccount          = "Sign in with NEAR first"
)

// UserMessage maps err to the text shown in the error modal.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, amount.ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, session.ErrNotAuthorized):
		return MsgNotAuthorized
	case errors.Is(err, session.ErrNetworkUnavailable), errors.Is(err, ledger.ErrInvalidResponse):
		return MsgNetworkUnavailable
	case errors.Is(err, session.ErrNoAccount):
		return MsgNoAccount
	default:
		return err.Error()
	}
}
