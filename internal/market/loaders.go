// =================================
// File: internal/market/loaders.go
// =================================
package market

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/heliox/internal/ledger"
	"github.com/rovshanmuradov/heliox/internal/session"
)

// Reader is the read side of the ledger.
type Reader interface {
	BalanceOf(ctx context.Context, account string) (*big.Int, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	Token(ctx context.Context, tokenID string) (*ledger.Token, error)
	InMaintenance(ctx context.Context) (bool, error)
	AllListings(ctx context.Context) ([]ledger.Listing, error)
	PricePerShare(ctx context.Context) (*big.Int, error)
	ListingOf(ctx context.Context, seller string) (*big.Int, error)
}

// AccountSource reports the signed-in account.
type AccountSource interface {
	CurrentAccount() (string, bool)
}

// VehicleLoader loads everything the vehicle card shows.
type VehicleLoader struct {
	reader   Reader
	accounts AccountSource
	tokenID  string
}

func NewVehicleLoader(reader Reader, accounts AccountSource, tokenID string) *VehicleLoader {
	return &VehicleLoader{reader: reader, accounts: accounts, tokenID: tokenID}
}

// Load issues the four reads concurrently. The snapshot is returned only
// when all of them succeed; otherwise the first error is returned.
func (l *VehicleLoader) Load(ctx context.Context) (*VehicleSnapshot, error) {
	account, ok := l.accounts.CurrentAccount()
	if !ok {
		return nil, session.ErrNoAccount
	}

	var snap VehicleSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := l.reader.BalanceOf(gctx, account)
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		snap.Balance = v
		return nil
	})
	g.Go(func() error {
		v, err := l.reader.TotalSupply(gctx)
		if err != nil {
			return fmt.Errorf("total supply: %w", err)
		}
		snap.TotalSupply = v
		return nil
	})
	g.Go(func() error {
		v, err := l.reader.Token(gctx, l.tokenID)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		snap.Token = v
		return nil
	})
	g.Go(func() error {
		v, err := l.reader.InMaintenance(gctx)
		if err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
		snap.InMaintenance = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// MarketLoader loads the offers table and the share price.
type MarketLoader struct {
	reader   Reader
	accounts AccountSource
}

func NewMarketLoader(reader Reader, accounts AccountSource) *MarketLoader {
	return &MarketLoader{reader: reader, accounts: accounts}
}

// Load reads listings and price concurrently, plus the signed-in account's
// own listing when there is one. All reads must succeed.
func (l *MarketLoader) Load(ctx context.Context) (*MarketSnapshot, error) {
	var snap MarketSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := l.reader.AllListings(gctx)
		if err != nil {
			return fmt.Errorf("listings: %w", err)
		}
		snap.Listings = v
		return nil
	})
	g.Go(func() error {
		v, err := l.reader.PricePerShare(gctx)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		snap.PricePerShare = v
		return nil
	})
	if account, ok := l.accounts.CurrentAccount(); ok {
		snap.Account = account
		g.Go(func() error {
			v, err := l.reader.ListingOf(gctx, account)
			if err != nil {
				return fmt.Errorf("own listing: %w", err)
			}
			snap.OwnListed = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
