package cli

import (
	"fmt"

	"github.com/AshishJayaram/log-reader-backend/internal/config"
	"github.com/AshishJayaram/log-reader-backend/internal/repository"
	"github.com/AshishJayaram/log-reader-backend/internal/repository/db"
)

// openRepository builds the store selected by cfg. The returned close func is never nil.
func openRepository(cfg config.StoreConfig) (*repository.Repository, func() error, error) {
	if cfg.Driver == config.DriverMemory {
		return repository.NewMemoryRepository(), func() error { return nil }, nil
	}

	dialect, err := repository.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	return repository.NewRepository(conn, dialect), conn.Close, nil
}
