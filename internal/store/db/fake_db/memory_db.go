package fake_db

import (
	"fmt"
	"math/rand"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db"
)

const optimizeForLitestream = false

// NewWithChunkSize spins up an ephemeral in-memory SQLite catalog for
// tests.
func NewWithChunkSize(chunkSize int) *db.DB {
	return db.NewWithChunkSize(EphemeralDbURI(), chunkSize, optimizeForLitestream)
}

func EphemeralDbURI() string {
	letters := []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")
	name := make([]rune, 10)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", string(name))
}
