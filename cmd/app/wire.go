//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/sakaba-labs/shinise-navi/internal/bootstrap"
	"github.com/sakaba-labs/shinise-navi/internal/domain/discovery"
	"github.com/sakaba-labs/shinise-navi/internal/domain/shinise"
	"github.com/sakaba-labs/shinise-navi/internal/infra/config"
	"github.com/sakaba-labs/shinise-navi/internal/infra/geocode/googlegeo"
	"github.com/sakaba-labs/shinise-navi/internal/infra/places/googleplaces"
	httpiface "github.com/sakaba-labs/shinise-navi/internal/interface/http"
	"github.com/sakaba-labs/shinise-navi/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideDiscoveryConfig,
		provideShiniseConfig,
		providePlacesClient,
		provideGeocodeClient,
		provideTextGenerator,
		shinise.NewEvaluator,
		discovery.NewService,
		wire.Bind(new(discovery.PlaceSearcher), new(*googleplaces.Client)),
		wire.Bind(new(discovery.Geocoder), new(*googlegeo.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
