package config

const (
	// DefaultPort is the default port of the application server
	DefaultPort = 4001

	DefaultDBPath    = "data/cloudimgs.db"
	DefaultChunkSize = 327680

	// DefaultBurnGraceSeconds is how long raw byte fetches keep working
	// after a burn-after-reading token has been burned
	DefaultBurnGraceSeconds = 300
)
