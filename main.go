package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"clickforge/internal/clock"
	"clickforge/internal/game"
	"clickforge/internal/store"
)

func main() {
	log.Println("clickforge starting")

	devMode := os.Getenv("DEV_MODE") == "true"
	if devMode {
		log.Println("⚠️  DEV MODE ENABLED")
	}

	modes := loadModes()
	kv := openKV(devMode)
	slots := store.NewSlotStore(kv, modes.IDs())

	hub := NewHub()
	go hub.Run()

	engine := game.NewEngine(modes, slots, hub.BroadcastSnapshot)

	loop := clock.NewLoop(engine, time.Second)
	if err := loop.Start(); err != nil {
		log.Fatal("failed to start game clock:", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, engine, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := "0.0.0.0:" + port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server failed:", err)
	}
}

func loadModes() *game.ModeSet {
	path := os.Getenv("MODES_FILE")
	if path == "" {
		if _, err := os.Stat("modes.yaml"); err == nil {
			path = "modes.yaml"
		}
	}
	if path == "" {
		return game.DefaultModes()
	}

	modes, err := game.LoadModesFile(path)
	if err != nil {
		log.Fatal("failed to load modes file:", err)
	}
	log.Println("Loaded modes from", path)
	return modes
}

// openKV picks the storage backend: Postgres when DATABASE_URL is set,
// otherwise a local SQLite file. Dev mode without an explicit path runs
// on in-memory saves.
func openKV(devMode bool) store.KV {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pg, err := store.OpenPostgres(dbURL)
		if err != nil {
			log.Fatal("failed to open database:", err)
		}
		log.Println("Connected to PostgreSQL")
		return pg
	}

	path := os.Getenv("CLICKFORGE_DB")
	if path == "" && devMode {
		log.Println("DEV MODE: saves are in-memory only")
		return store.NewMemory()
	}
	if path == "" {
		path = "clickforge.db"
	}

	s, err := store.OpenSQLite(path)
	if err != nil {
		log.Fatal("failed to open save file:", err)
	}
	log.Println("Saving to", path)
	return s
}
