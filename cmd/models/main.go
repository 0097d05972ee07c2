// Command models prints the models reachable with the configured API key
// that support content generation.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-social-posts/internal/config"
	"github.com/tbourn/go-social-posts/internal/llm"
	"github.com/tbourn/go-social-posts/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logging.Setup(cfg.LogLevel, true, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := llm.NewClient(ctx, cfg.GenAI)
	if err != nil {
		log.Fatal().Err(err).Msg("generation client setup failed")
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list models")
	}
	for _, m := range models {
		if m.DisplayName != "" {
			fmt.Printf("%s\t%s\n", m.Name, m.DisplayName)
			continue
		}
		fmt.Println(m.Name)
	}
}
