package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/simp-lee/touradmin/internal/app"
	"github.com/simp-lee/touradmin/internal/config"
)

func main() {
	// Variables from .env never override the real environment.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("failed to load .env: ", err)
	}

	defaultPath := "configs/config.yaml"
	if p := os.Getenv("APP_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "path to configuration file (env APP_CONFIG)")
	migrateOnly := flag.Bool("migrate", false, "apply the database schema and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("failed to create app: ", err)
	}
	if *migrateOnly {
		a.Close()
		return
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
