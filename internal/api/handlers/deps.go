package routes

import (
	"context"

	"atlas/internal/model"
	"atlas/internal/service/detail"

	"go.uber.org/zap"
)

// Locator resolves a coordinate to the feature containing it
type Locator interface {
	Locate(lat, lng float64) (*model.Feature, bool)
	Names() []string
}

// CountryLister lists every known country name
type CountryLister interface {
	AllCountries(ctx context.Context) ([]string, error)
}

// Deps is everything the handlers need
type Deps struct {
	Geometry  Locator
	Detail    detail.Dependencies
	Registry  *detail.Registry
	Countries CountryLister
	Logger    *zap.Logger
}
