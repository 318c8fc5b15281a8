package ui

import (
	"context"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/config"
	"github.com/rovshanmuradov/heliox/internal/logger"
	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/session"
)

// VehicleSource loads the home page data.
type VehicleSource interface {
	Load(ctx context.Context) (*market.VehicleSnapshot, error)
}

// MarketSource loads the marketplace data.
type MarketSource interface {
	Load(ctx context.Context) (*market.MarketSnapshot, error)
}

// ActionRunner performs the user's mutating actions.
type ActionRunner interface {
	ListShares(ctx context.Context, quantity string, r market.Refresher) error
	Buy(ctx context.Context, row market.Row, r market.Refresher) error
	Cancel(ctx context.Context, row market.Row, r market.Refresher) error
	SubmitVehicleData(ctx context.Context, mileage, temperature string, r market.Refresher) error
	ClaimVehicle(ctx context.Context, tokenID string, r market.Refresher) error
}

// ServiceProvider gives screens explicit access to the services they use.
type ServiceProvider interface {
	GetContext() context.Context
	GetSession() session.Session
	GetVehicleSource() VehicleSource
	GetMarketSource() MarketSource
	GetActions() ActionRunner
	GetConfig() *config.Config
	GetLogger() *zap.Logger
	GetLogBuffer() *logger.LogBuffer
	GetUpdates() *UpdateSender
}

// Services is the ServiceProvider used by the application.
type Services struct {
	Context   context.Context
	Session   session.Session
	Vehicle   VehicleSource
	Market    MarketSource
	Actions   ActionRunner
	Config    *config.Config
	Logger    *zap.Logger
	LogBuffer *logger.LogBuffer
	Updates   *UpdateSender
}

func (s *Services) GetContext() context.Context     { return s.Context }
func (s *Services) GetSession() session.Session     { return s.Session }
func (s *Services) GetVehicleSource() VehicleSource { return s.Vehicle }
func (s *Services) GetMarketSource() MarketSource   { return s.Market }
func (s *Services) GetActions() ActionRunner        { return s.Actions }
func (s *Services) GetConfig() *config.Config       { return s.Config }
func (s *Services) GetLogger() *zap.Logger          { return s.Logger }
func (s *Services) GetLogBuffer() *logger.LogBuffer { return s.LogBuffer }
func (s *Services) GetUpdates() *UpdateSender       { return s.Updates }
