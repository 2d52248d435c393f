package qdrant

import (
	"time"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/darkhanakh/claude-context/internal/xerrors"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"

	// batchSize bounds a single upsert call; larger point sets are
	// split into sequentially-committed batches (§5's partial-insert
	// contract).
	batchSize = 100
)

// Config configures a Store.
type Config struct {
	// Client is an optional pre-configured Qdrant client. If nil, one
	// is created from Host/Port/APIKey/UseTLS.
	Client *qc.Client

	// Host and Port address the Qdrant gRPC endpoint, used when Client
	// is nil. Port defaults to 6334.
	Host string
	Port int

	// APIKey authenticates against a secured Qdrant deployment.
	APIKey string

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool

	// Distance is the similarity metric for the dense vector. Defaults
	// to cosine.
	Distance qc.Distance

	// RequestTimeout bounds individual backend calls when the caller's
	// context carries no deadline. Default 30s.
	RequestTimeout time.Duration
}

func (c *Config) validate() error {
	if c.Client == nil && c.Host == "" {
		return xerrors.InvalidArgument("qdrant: either Client or Host must be provided")
	}
	return nil
}

func withDefaults(c Config) Config {
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Distance == 0 {
		c.Distance = qc.Distance_Cosine
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	return c
}
