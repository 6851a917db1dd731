package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/watchtogether/syncserver/internal/app"
	"github.com/watchtogether/syncserver/internal/config"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	jsonConfig, _ := json.MarshalIndent(cfg, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, cfg))
}
