package continent

import (
	"context"
	"errors"
	"fmt"

	"atlas/internal/config"
	"atlas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned for continents missing from the store
var ErrNotFound = errors.New("continent not found")

// Store keeps continent page metadata and membership lists in Postgres
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) find(ctx context.Context, name string) (*model.ContinentPG, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreOpTimeout)
	defer cancel()

	var row model.ContinentPG
	err := s.db.WithContext(ctx).Where("key = ?", model.ContinentKey(name)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("continent %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load continent %q: %w", name, err)
	}
	return &row, nil
}

// ContinentDetails returns the stored page metadata
func (s *Store) ContinentDetails(ctx context.Context, name string) (*model.ContinentDetails, error) {
	row, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	return row.ToDetails(), nil
}

// Members returns the stored membership list
func (s *Store) Members(ctx context.Context, name string) ([]string, error) {
	row, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	return row.Members, nil
}

// Upsert inserts the continent or replaces every column of the existing row
func (s *Store) Upsert(ctx context.Context, row *model.ContinentPG) error {
	if row.Key == "" {
		row.Key = model.ContinentKey(row.Name)
	}
	if row.Key == "" {
		return errors.New("continent has no name")
	}

	ctx, cancel := context.WithTimeout(ctx, config.StoreOpTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert continent %q: %w", row.Name, err)
	}
	return nil
}

// List returns every stored continent ordered by name
func (s *Store) List(ctx context.Context) ([]model.ContinentPG, error) {
	ctx, cancel := context.WithTimeout(ctx, config.StoreOpTimeout)
	defer cancel()

	var rows []model.ContinentPG
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list continents: %w", err)
	}
	return rows, nil
}
