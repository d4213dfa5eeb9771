//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/config"
	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/npc"
	"github.com/cory-johannsen/catchemall/internal/scripting"
)

var sessionSet = wire.NewSet(
	provideRanger,
	provideSpecies,
	provideTrainerTemplates,
	provideScripts,
	wire.Bind(new(npc.Scripts), new(*scripting.Manager)),
	provideStore,
	provideTrainerManager,
	provideRules,
	battle.NewSimulator,
	wire.Struct(new(session), "*"),
)

func newSession(ctx context.Context, cfg config.Config, logger *zap.Logger) (*session, func(), error) {
	wire.Build(sessionSet)
	return nil, nil, nil
}
