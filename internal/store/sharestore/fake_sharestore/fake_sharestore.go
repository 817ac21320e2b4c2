package fake_sharestore

import (
	"log"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db/fake_db"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/sharestore"
)

// New spins up an ephemeral in-memory SQLite share store for tests.
func New() *sharestore.Store {
	s, err := sharestore.Open(fake_db.EphemeralDbURI())
	if err != nil {
		log.Fatalf("failed to open ephemeral share store: %v", err)
	}
	return s
}
