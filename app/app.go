// Package app wires the wishbot application: config, storage, services,
// dialog engine, and the Telegram run options consumed by core/cmd.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/wishbot/bot"
	"github.com/m3rciful/wishbot/core/bootstrap"
	coretelegram "github.com/m3rciful/wishbot/core/telegram"
	"github.com/m3rciful/wishbot/core/telegram/router"
	"github.com/m3rciful/wishbot/core/telegram/state"
	"github.com/m3rciful/wishbot/dialog"
	"github.com/m3rciful/wishbot/service"
	"github.com/m3rciful/wishbot/storage/postgres"
)

// App holds the assembled application.
type App struct {
	cfg *Config
	db  *sqlx.DB
	bot *bot.Bot
	reg *coretelegram.Registry
}

// Bootstrap initializes the logger, database, and migrations, then assembles
// the domain services and the dialog engine.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := postgres.New(res.DB)
	users := service.NewUsers(store)
	wishes := service.NewWishes(store)
	friends := service.NewFriends(store)

	engine := dialog.New(users, wishes, friends, state.NewMemoryManager())
	b := bot.New(engine, users)

	return &App{
		cfg: cfg,
		db:  res.DB,
		bot: b,
		reg: bot.NewRegistry(b),
	}, nil
}

// TelegramRunOptions builds the runtime wiring: middleware chain, command
// routes, and the message routes feeding the dialog engine.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.MessageRoutes(a.bot, a.reg, router.MessageOptions{})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
