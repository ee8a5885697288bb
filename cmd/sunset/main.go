package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sunset/internal/clock"
	"github.com/smallbiznis/sunset/internal/config"
	"github.com/smallbiznis/sunset/internal/logger"
	"github.com/smallbiznis/sunset/internal/migration"
	"github.com/smallbiznis/sunset/internal/server"
	"github.com/smallbiznis/sunset/pkg/db"
	"github.com/smallbiznis/sunset/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		telemetry.Module,
		migration.Module,

		// Functional Domains
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
