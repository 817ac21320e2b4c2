package main

import (
	"crypto/rand"
	"log"
	"os"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/config"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/auth"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/server"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/share"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/sharestore"
)

func main() {
	log.Print("Starting cloudimgs server")

	cfgPath := os.Getenv("CLOUDIMGS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", cfgPath, err)
	}
	log.Printf("Listening on %d", cfg.Port)

	authenticator, err := auth.New(cfg.SecretKey)
	if err != nil {
		log.Fatalf("invalid shared secret: %v", err)
	}
	if !authenticator.Enabled() {
		log.Print("no secret key configured, password feature disabled")
	}

	database := db.NewWithChunkSize(cfg.DBPath, cfg.DBChunkSize, false)

	shareStore, err := sharestore.New(database.Handle())
	if err != nil {
		log.Fatalf("failed to prepare share store: %v", err)
	}

	engine := share.NewEngine(
		shareStore,
		share.NewSigner(signingKey(cfg)),
		time.Duration(cfg.BurnGraceSeconds)*time.Second,
	)

	s, err := server.New(cfg, database, &authenticator, engine)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	log.Fatal(s.Run())
}

// signingKey keys the share record signatures. Without a configured key
// a random one is used; issued share tokens then stop validating after
// a restart, which is only acceptable for throwaway setups.
func signingKey(cfg *config.Config) []byte {
	if cfg.SigningKey != "" {
		return []byte(cfg.SigningKey)
	}

	log.Print("no signing key configured, share records will not survive a restart")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate signing key: %v", err)
	}
	return key
}
