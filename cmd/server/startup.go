// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

// startupLoader is the part of the reload service used before the tree
// starts.
type startupLoader interface {
	ReloadNow(ctx context.Context, source string) (recommend.SnapshotInfo, error)
}

func reloadConfig(cfg *config.Config) services.ReloadConfig {
	return services.ReloadConfig{
		Path:            cfg.Dataset.Path,
		Watch:           cfg.Dataset.Watch,
		PollInterval:    cfg.Dataset.PollInterval,
		Debounce:        cfg.Dataset.Debounce,
		MinInterval:     cfg.Dataset.MinReloadInterval,
		BreakerFailures: cfg.Dataset.BreakerFailures,
		BreakerTimeout:  cfg.Dataset.BreakerTimeout,
	}
}

// initialLoad builds the first snapshot before the server starts.
//
// Only a catalog that can never be indexed as configured is returned as an
// error. Anything else, such as the file not existing yet, is logged and
// the server starts unready; the reload service installs the snapshot once
// the file appears.
func initialLoad(ctx context.Context, loader startupLoader) error {
	info, err := loader.ReloadNow(ctx, services.SourceStartup)
	switch {
	case err == nil:
		logging.Info().
			Uint64("version", info.Version).
			Int("items", info.Items).
			Int("rows_dropped", info.RowsDropped).
			Msg("Initial snapshot installed")
		return nil
	case errors.Is(err, recommend.ErrInvalidCatalog):
		return err
	default:
		logging.Warn().Err(err).Msg("Initial dataset load failed, starting without a snapshot")
		return nil
	}
}

// waitForTree blocks until the supervisor tree has stopped and returns the
// error it stopped with. errCh carries a single value and is never closed.
func waitForTree(ctx context.Context, errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	}
	return <-errCh
}
