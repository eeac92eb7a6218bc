package domain

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired journey sessions.
	ErrSessionNotFound = errors.New("journey session not found")
	// ErrCityNotFound is returned when a catalog city does not exist.
	ErrCityNotFound = errors.New("city not found")
	// ErrNoRankWeights is returned when a recommendation has no usable weight.
	ErrNoRankWeights = errors.New("no valid rank_weights provided for scoring")
	// ErrRegionRequired is returned by per-region aggregations without a region.
	ErrRegionRequired = errors.New("region parameter is required")
)
