// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

var (
	// ErrSchema is matched by every *SchemaError. It wraps
	// recommend.ErrInvalidCatalog so the engine classifies it as a
	// configuration failure.
	ErrSchema = fmt.Errorf("%w: dataset schema", recommend.ErrInvalidCatalog)

	// ErrEmptyDataset is returned when cleaning leaves no rows.
	ErrEmptyDataset = errors.New("dataset has no usable rows")

	// ErrNotLoaded is returned by analytics queries before the first load.
	ErrNotLoaded = errors.New("no dataset loaded")

	// ErrUnknownMetric is returned for an unsupported analytics metric.
	ErrUnknownMetric = errors.New("unknown metric")
)

// SchemaError reports required columns missing from a dataset file.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s is missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrSchema.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// closeQuietly closes closer and ignores the error; cleanup is best-effort.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
