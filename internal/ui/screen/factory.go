package screen

import (
	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/ui/router"
)

// NewFactory returns the router factory building screens over services.
func NewFactory(services ui.ServiceProvider) router.Factory {
	return func(route ui.Route) router.Screen {
		switch route {
		case ui.RouteMarketplace:
			return NewMarketplaceScreen(services)
		case ui.RouteLogs:
			return NewLogsScreen(services)
		default:
			return NewHomeScreen(services)
		}
	}
}
