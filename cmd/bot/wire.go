//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/Jacobbrewer1/tickets/pkg/ticketing"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp() (*App, error) {
	wire.Build(
		wire.Value(logging.Name(AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		LoadConfig,
		NewMongoClient,
		NewMongoDatabase,
		dataaccess.NewPanelDal,
		dataaccess.NewStatsDal,
		NewSession,
		NewSessionGateway,
		wire.Bind(new(ticketing.Gateway), new(*sessionGateway)),
		ticketing.NewPanelManager,
		ticketing.NewPublisher,
		ticketing.NewResolver,
		ticketing.NewStats,
		ticketing.NewController,
		NewRateLimiter,
		mux.NewRouter,
		NewApp,
	)
	return new(App), nil
}
