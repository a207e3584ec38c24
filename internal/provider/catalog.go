package provider

import (
	"context"
	"errors"
	"fmt"

	"atlas/internal/model"
	"atlas/internal/provider/continent"
	"atlas/internal/provider/restcountries"

	"go.uber.org/zap"
)

// CountryAPI is the subset of the REST Countries client the catalog uses
type CountryAPI interface {
	CountryDetails(ctx context.Context, name string) (*model.CountryDetails, error)
	RegionMembers(ctx context.Context, region string) ([]string, error)
	AllNames(ctx context.Context) ([]string, error)
}

// ContinentStore is the subset of the continent store the catalog uses
type ContinentStore interface {
	ContinentDetails(ctx context.Context, name string) (*model.ContinentDetails, error)
	Members(ctx context.Context, name string) ([]string, error)
}

// Catalog combines the country API with the continent store into one
// metadata and membership source. Either side may be nil.
type Catalog struct {
	countries  CountryAPI
	continents ContinentStore
	logger     *zap.Logger
}

func NewCatalog(countries CountryAPI, continents ContinentStore, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{countries: countries, continents: continents, logger: logger}
}

// CountryDetails returns REST Countries data for the country
func (c *Catalog) CountryDetails(ctx context.Context, name string) (*model.CountryDetails, error) {
	if c.countries == nil {
		return nil, errors.New("country api not configured")
	}
	return c.countries.CountryDetails(ctx, name)
}

// ContinentDetails returns the stored page metadata. Without a store, or for
// an unknown continent, a bare record carrying only the name is returned.
func (c *Catalog) ContinentDetails(ctx context.Context, name string) (*model.ContinentDetails, error) {
	if c.continents == nil {
		return &model.ContinentDetails{Name: name}, nil
	}
	details, err := c.continents.ContinentDetails(ctx, name)
	if errors.Is(err, continent.ErrNotFound) {
		return &model.ContinentDetails{Name: name}, nil
	}
	return details, err
}

// Members lists the countries of a continent: the stored list when present,
// otherwise the REST Countries region. An empty result means neither source
// knows the continent.
func (c *Catalog) Members(ctx context.Context, name string) ([]string, error) {
	if c.continents != nil {
		members, err := c.continents.Members(ctx, name)
		switch {
		case err == nil && len(members) > 0:
			return members, nil
		case err != nil && !errors.Is(err, continent.ErrNotFound):
			c.logger.Warn("continent store lookup failed", zap.String("continent", name), zap.Error(err))
		}
	}

	if c.countries == nil {
		return nil, nil
	}
	members, err := c.countries.RegionMembers(ctx, name)
	if errors.Is(err, restcountries.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", name, err)
	}
	return members, nil
}

// AllCountries lists every country name known to the API
func (c *Catalog) AllCountries(ctx context.Context) ([]string, error) {
	if c.countries == nil {
		return nil, errors.New("country api not configured")
	}
	return c.countries.AllNames(ctx)
}
