package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/game"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", config.PathFromEnv("flagsense.yaml"), "tuning YAML (missing file means defaults)")
	arenaPath := flag.String("arena", "", "arena YAML (overrides match.arena)")
	seed := flag.Uint64("seed", 1, "seed for the first match")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("loading config")
	}
	if *arenaPath == "" {
		*arenaPath = cfg.Match.Arena
	}
	arena := game.DefaultArena()
	if *arenaPath != "" {
		if arena, err = game.LoadArena(*arenaPath); err != nil {
			logger.WithError(err).WithField("path", *arenaPath).Fatal("loading arena")
		}
	}

	v := game.NewViewer(arena, cfg, *seed, game.WithLogger(logger))
	w, h := v.Size()
	ebiten.SetWindowTitle("Flag Sense")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(v); err != nil {
		logger.WithError(err).Fatal("viewer stopped")
	}
}
