// Package factory builds configured implementations of the service's
// pluggable dependencies.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/config"
	"github.com/lucidia/lucid-server/internal/memstore"
	"github.com/lucidia/lucid-server/internal/memstore/chromem"
	"github.com/lucidia/lucid-server/internal/memstore/postgres"
	"github.com/lucidia/lucid-server/internal/memstore/weaviate"
)

// NewStore returns the memory store selected by LUCID_STORE_DRIVER.
func NewStore(ctx context.Context, cfg *config.Config, emb memstore.Embeddings, log zerolog.Logger) (memstore.Store, error) {
	switch cfg.StoreDriver {
	case "chromem":
		log.Info().Str("path", cfg.ChromemPath).Msg("using embedded chromem store")
		return chromem.New(cfg.ChromemPath, emb)
	case "weaviate":
		log.Info().Str("url", cfg.WeaviateURL).Msg("using weaviate store")
		return weaviate.New(cfg.WeaviateURL, emb)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("LUCID_POSTGRES_DSN is required when LUCID_STORE_DRIVER=postgres")
		}
		log.Info().Msg("using postgres store")
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown LUCID_STORE_DRIVER: %s", cfg.StoreDriver)
	}
}
