package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/amount"
	"github.com/rovshanmuradov/heliox/internal/ledger"
	"github.com/rovshanmuradov/heliox/internal/session"
)

var usdt = QuoteAsset{Symbol: "USDT", Decimals: 6}

type account string

func (a account) CurrentAccount() (string, bool) { return string(a), a != "" }

type fakeReader struct {
	fail  map[string]error
	calls atomic.Int32
}

func (f *fakeReader) err(method string) error {
	f.calls.Add(1)
	return f.fail[method]
}

func (f *fakeReader) BalanceOf(context.Context, string) (*big.Int, error) {
	return big.NewInt(250), f.err("ft_balance_of")
}

func (f *fakeReader) TotalSupply(context.Context) (*big.Int, error) {
	return big.NewInt(1000), f.err("get_ft_total_supply")
}

func (f *fakeReader) Token(_ context.Context, tokenID string) (*ledger.Token, error) {
	return &ledger.Token{TokenID: tokenID, Metadata: &ledger.TokenMetadata{Title: "Model Y", Extra: "QmDoc"}}, f.err("nft_token")
}

func (f *fakeReader) InMaintenance(context.Context) (bool, error) {
	return true, f.err("is_in_maintenance")
}

func (f *fakeReader) AllListings(context.Context) ([]ledger.Listing, error) {
	return []ledger.Listing{{Seller: "bob.testnet", Quantity: big.NewInt(3)}}, f.err("get_all_listings")
}

func (f *fakeReader) PricePerShare(context.Context) (*big.Int, error) {
	return big.NewInt(1500000), f.err("get_price_per_share")
}

func (f *fakeReader) ListingOf(context.Context, string) (*big.Int, error) {
	return big.NewInt(7), f.err("get_listing")
}

type writerCall struct {
	method string
	args   []string
}

type fakeWriter struct {
	err     error
	claimed bool
	calls   []writerCall
}

func (f *fakeWriter) record(method string, args ...string) {
	f.calls = append(f.calls, writerCall{method, args})
}

func (f *fakeWriter) ListShares(_ context.Context, quantity string) error {
	f.record("list", quantity)
	return f.err
}

func (f *fakeWriter) BuyShares(_ context.Context, seller, shares, totalCost string) error {
	f.record("buy", seller, shares, totalCost)
	return f.err
}

func (f *fakeWriter) CancelListing(_ context.Context, quantity string) error {
	f.record("cancel", quantity)
	return f.err
}

func (f *fakeWriter) SubmitVehicleData(_ context.Context, mileage, temperature json.Number) error {
	f.record("submit", string(mileage), string(temperature))
	return f.err
}

func (f *fakeWriter) ClaimVehicle(_ context.Context, tokenID string) (bool, error) {
	f.record("claim", tokenID)
	return f.claimed, f.err
}

type countingRefresher struct{ n int }

func (c *countingRefresher) Refresh() { c.n++ }

type memJournal struct {
	mu      sync.Mutex
	entries [][]string
}

func (j *memJournal) Record(account, action, contract, quantity, outcome string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, []string{account, action, contract, quantity, outcome})
}

var testContracts = ledger.Contracts{
	FT:     "heliox-ft.testnet",
	NFT:    "heliox-core.testnet",
	Market: "heliox-marketplace.testnet",
	USDT:   "usdt.fakes.testnet",
}

func newActions(w Writer, acct string, j Journal) *Actions {
	return NewActions(w, account(acct), ActionsConfig{
		Contracts:     testContracts,
		ShareDecimals: 0,
		Quote:         usdt,
	}, j, zap.NewNop())
}

func TestBuildRows(t *testing.T) {
	snap := &MarketSnapshot{
		Listings: []ledger.Listing{
			{Seller: "alice.testnet", Quantity: big.NewInt(2)},
			{Seller: "a-very-long-seller-name.testnet", Quantity: big.NewInt(3)},
		},
		PricePerShare: big.NewInt(1500000),
	}

	rows := BuildRows(snap, "alice.testnet", usdt)
	require.Len(t, rows, 2)

	assert.Equal(t, StateOwned, rows[0].State)
	assert.Equal(t, ActionCancel, rows[0].Action)
	assert.Equal(t, "Cancel", string(rows[0].Action))
	assert.Equal(t, "3.00 USDT", rows[0].TotalCostLabel)

	assert.Equal(t, StateAvailable, rows[1].State)
	assert.Equal(t, ActionBuy, rows[1].Action)
	assert.Equal(t, "a-very-long-sel...", rows[1].SellerLabel)
	assert.Equal(t, "4500000", rows[1].TotalCost.String())
	assert.Equal(t, "4.50 USDT", rows[1].TotalCostLabel)

	for _, r := range BuildRows(snap, "", usdt) {
		assert.Equal(t, ActionBuy, r.Action)
	}

	assert.Empty(t, BuildRows(&MarketSnapshot{}, "alice.testnet", usdt))
	assert.Nil(t, BuildRows(nil, "alice.testnet", usdt))
}

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "1.50 USDT", PriceLabel(&MarketSnapshot{PricePerShare: big.NewInt(1500000)}, usdt))
	assert.Equal(t, "0.00 USDT", PriceLabel(nil, usdt))
}

func TestSellerLabel(t *testing.T) {
	assert.Equal(t, "bob.testnet...", SellerLabel("bob.testnet"))
	assert.Equal(t, "123456789012345...", SellerLabel("1234567890123456789"))
}

func TestVehicleCard(t *testing.T) {
	card := NewVehicleCard("vehicle-1", &VehicleSnapshot{
		Balance:       big.NewInt(250),
		TotalSupply:   big.NewInt(1000),
		Token:         &ledger.Token{TokenID: "vehicle-1", Metadata: &ledger.TokenMetadata{Title: "Model Y", Extra: "QmDoc"}},
		InMaintenance: true,
	})
	assert.Equal(t, "Model Y", card.Title)
	assert.Equal(t, StatusMaintenance, card.StatusLabel)
	assert.Equal(t, "250 Shares", card.BalanceLabel)
	assert.Equal(t, "25.00%", card.PercentLabel)
	assert.Equal(t, "https://ipfs.io/ipfs/QmDoc", card.DocumentURL)
	assert.False(t, card.Claimable)

	card = NewVehicleCard("vehicle-1", &VehicleSnapshot{
		Balance:     big.NewInt(1000),
		TotalSupply: big.NewInt(1000),
	})
	assert.Equal(t, DefaultVehicleTitle, card.Title)
	assert.Equal(t, StatusNormal, card.StatusLabel)
	assert.Equal(t, "100.00%", card.PercentLabel)
	assert.Empty(t, card.DocumentURL)
	assert.True(t, card.Claimable)

	card = NewVehicleCard("vehicle-1", &VehicleSnapshot{Balance: big.NewInt(0), TotalSupply: big.NewInt(0)})
	assert.Equal(t, "0.00%", card.PercentLabel)
	assert.False(t, card.Claimable)
}

func TestVehicleLoader(t *testing.T) {
	r := &fakeReader{}
	snap, err := NewVehicleLoader(r, account("alice.testnet"), "vehicle-1").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "250", snap.Balance.String())
	assert.Equal(t, "1000", snap.TotalSupply.String())
	assert.Equal(t, "vehicle-1", snap.Token.TokenID)
	assert.True(t, snap.InMaintenance)
	assert.EqualValues(t, 4, r.calls.Load())
}

func TestVehicleLoaderOneReadFails(t *testing.T) {
	for _, method := range []string{"ft_balance_of", "get_ft_total_supply", "nft_token", "is_in_maintenance"} {
		t.Run(method, func(t *testing.T) {
			r := &fakeReader{fail: map[string]error{method: session.ErrNetworkUnavailable}}
			snap, err := NewVehicleLoader(r, account("alice.testnet"), "vehicle-1").Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, session.ErrNetworkUnavailable)
			assert.Nil(t, snap)
		})
	}
}

func TestVehicleLoaderWithoutAccount(t *testing.T) {
	r := &fakeReader{}
	_, err := NewVehicleLoader(r, account(""), "vehicle-1").Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNoAccount)
	assert.Zero(t, r.calls.Load())
}

func TestMarketLoader(t *testing.T) {
	r := &fakeReader{}
	snap, err := NewMarketLoader(r, account("")).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Listings, 1)
	assert.Equal(t, "1500000", snap.PricePerShare.String())
	assert.Nil(t, snap.OwnListed)
	assert.Empty(t, snap.Account)
	assert.EqualValues(t, 2, r.calls.Load())

	r = &fakeReader{}
	snap, err = NewMarketLoader(r, account("alice.testnet")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", snap.OwnListed.String())
	assert.Equal(t, "alice.testnet", snap.Account)
	assert.EqualValues(t, 3, r.calls.Load())

	r = &fakeReader{fail: map[string]error{"get_price_per_share": ledger.ErrInvalidResponse}}
	snap, err = NewMarketLoader(r, account("")).Load(context.Background())
	assert.ErrorIs(t, err, ledger.ErrInvalidResponse)
	assert.Nil(t, snap)
}

func TestListSharesValidatesBeforeCalling(t *testing.T) {
	for _, q := range []string{"", "   ", "abc", "-1", "1.5", "0"} {
		w := &fakeWriter{}
		r := &countingRefresher{}
		err := newActions(w, "alice.testnet", nil).ListShares(context.Background(), q, r)
		assert.ErrorIs(t, err, amount.ErrInvalidAmount, "quantity %q", q)
		assert.Empty(t, w.calls)
		assert.Zero(t, r.n)
	}
}

func TestListSharesRefreshesOnce(t *testing.T) {
	w := &fakeWriter{}
	r := &countingRefresher{}
	j := &memJournal{}

	require.NoError(t, newActions(w, "alice.testnet", j).ListShares(context.Background(), "5.00", r))
	assert.Equal(t, []writerCall{{"list", []string{"5"}}}, w.calls)
	assert.Equal(t, 1, r.n)
	assert.Equal(t, [][]string{{"alice.testnet", "list", "heliox-ft.testnet", "5", OutcomeOK}}, j.entries)
}

func TestFailedActionDoesNotRefresh(t *testing.T) {
	w := &fakeWriter{err: fmt.Errorf("wrapped: %w", session.ErrNotAuthorized)}
	r := &countingRefresher{}
	j := &memJournal{}

	row := Row{Seller: "alice.testnet", Quantity: big.NewInt(2), State: StateOwned, Action: ActionCancel}
	err := newActions(w, "alice.testnet", j).Cancel(context.Background(), row, r)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrNotAuthorized)
	assert.Len(t, w.calls, 1)
	assert.Zero(t, r.n)
	require.Len(t, j.entries, 1)
	assert.Equal(t, OutcomeFailed, j.entries[0][4])
}

func TestBuy(t *testing.T) {
	w := &fakeWriter{}
	r := &countingRefresher{}
	rows := BuildRows(&MarketSnapshot{
		Listings:      []ledger.Listing{{Seller: "bob.testnet", Quantity: big.NewInt(3)}},
		PricePerShare: big.NewInt(1500000),
	}, "alice.testnet", usdt)

	require.NoError(t, newActions(w, "alice.testnet", nil).Buy(context.Background(), rows[0], r))
	assert.Equal(t, []writerCall{{"buy", []string{"bob.testnet", "3", "4500000"}}}, w.calls)
	assert.Equal(t, 1, r.n)
}

// refundingSession answers every call with the amount the market kept.
type refundingSession struct {
	account
	used string
}

func (s refundingSession) Loading() bool                { return false }
func (s refundingSession) SignIn(context.Context) error { return nil }
func (s refundingSession) SignOut()                     {}

func (s refundingSession) ViewFunction(context.Context, string, string, any) (json.RawMessage, error) {
	return nil, errors.New("unexpected view")
}

func (s refundingSession) CallFunction(context.Context, session.FunctionCall) (json.RawMessage, error) {
	return json.RawMessage(s.used), nil
}

func TestRefundedBuyDoesNotRefresh(t *testing.T) {
	sess := refundingSession{account: "alice.testnet", used: `"0"`}
	r := &countingRefresher{}
	j := &memJournal{}
	rows := BuildRows(&MarketSnapshot{
		Listings:      []ledger.Listing{{Seller: "bob.testnet", Quantity: big.NewInt(3)}},
		PricePerShare: big.NewInt(1500000),
	}, "alice.testnet", usdt)

	err := newActions(ledger.New(sess, testContracts), "alice.testnet", j).Buy(context.Background(), rows[0], r)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrNotAuthorized)
	assert.Equal(t, MsgNotAuthorized, UserMessage(err))
	assert.Zero(t, r.n)
	require.Len(t, j.entries, 1)
	assert.Equal(t, OutcomeFailed, j.entries[0][4])

	sess.used = `"4500000"`
	require.NoError(t, newActions(ledger.New(sess, testContracts), "alice.testnet", nil).Buy(context.Background(), rows[0], r))
	assert.Equal(t, 1, r.n)
}

func TestActionsRequireAccount(t *testing.T) {
	w := &fakeWriter{}
	err := newActions(w, "", nil).ListShares(context.Background(), "1", nil)
	assert.ErrorIs(t, err, session.ErrNoAccount)
	assert.Empty(t, w.calls)
}

func TestSubmitVehicleData(t *testing.T) {
	w := &fakeWriter{}
	r := &countingRefresher{}
	a := newActions(w, "alice.testnet", nil)

	require.NoError(t, a.SubmitVehicleData(context.Background(), " 12000 ", "-4.5", r))
	assert.Equal(t, []writerCall{{"submit", []string{"12000", "-4.5"}}}, w.calls)
	assert.Equal(t, 1, r.n)

	for _, in := range [][2]string{{"", "1"}, {"1", ""}, {"x", "1"}, {"1", "hot"}} {
		err := a.SubmitVehicleData(context.Background(), in[0], in[1], r)
		assert.ErrorIs(t, err, amount.ErrInvalidAmount)
	}
	assert.Len(t, w.calls, 1)
}

func TestClaimVehicle(t *testing.T) {
	w := &fakeWriter{claimed: true}
	r := &countingRefresher{}
	require.NoError(t, newActions(w, "alice.testnet", nil).ClaimVehicle(context.Background(), "vehicle-1", r))
	assert.Equal(t, 1, r.n)

	w = &fakeWriter{claimed: false}
	err := newActions(w, "alice.testnet", nil).ClaimVehicle(context.Background(), "vehicle-1", r)
	assert.ErrorIs(t, err, session.ErrNotAuthorized)
	assert.Equal(t, 1, r.n)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, MsgInvalidAmount, UserMessage(fmt.Errorf("x: %w", amount.ErrInvalidAmount)))
	assert.Equal(t, MsgNotAuthorized, UserMessage(fmt.Errorf("x: %w", session.ErrNotAuthorized)))
	assert.Equal(t, MsgNetworkUnavailable, UserMessage(session.ErrNetworkUnavailable))
	assert.Equal(t, MsgNetworkUnavailable, UserMessage(ledger.ErrInvalidResponse))
	assert.Equal(t, MsgNoAccount, UserMessage(session.ErrNoAccount))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
	assert.Empty(t, UserMessage(nil))
}

func TestRefreshFunc(t *testing.T) {
	called := false
	var r Refresher = RefreshFunc(func() { called = true })
	r.Refresh()
	assert.True(t, called)
}
