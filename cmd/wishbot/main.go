package main

import (
	"fmt"
	"log"

	"github.com/m3rciful/wishbot/app"
	corecmd "github.com/m3rciful/wishbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			c, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(c)
		},
	})
	if err != nil {
		log.Fatalf("wishbot: %v", err)
	}
}
