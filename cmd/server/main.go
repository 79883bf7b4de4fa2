package main

import (
	"context"
	"log"

	"github.com/psergee/authd/internal/app"
	"github.com/psergee/authd/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)

}
