package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ContinentPG model for PostgreSQL storage
type ContinentPG struct {
	Key             string   `gorm:"primaryKey;size:100"`
	Name            string   `gorm:"size:255;not null"`
	Cover           string   `gorm:"type:text"`
	Description     string   `gorm:"type:text"`
	Area            string   `gorm:"size:255"`
	Population      string   `gorm:"size:255"`
	Borders         string   `gorm:"type:text"`
	CoveredSeas     []string `gorm:"serializer:json"`
	PlacesToTravel  []string `gorm:"serializer:json"`
	FamousMonuments []string `gorm:"serializer:json"`
	Members         []string `gorm:"serializer:json"`
	MapScale        float64
	MapCenterLng    float64
	MapCenterLat    float64

	UpdatedAt time.Time      `gorm:"column:updated_at"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name
func (ContinentPG) TableName() string {
	return "continents"
}

// ContinentKey normalises a continent name into its storage key
// ("North America" and "north_america" share a key)
func ContinentKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "_")
}

// ToDetails converts the stored row into page metadata
func (c *ContinentPG) ToDetails() *ContinentDetails {
	return &ContinentDetails{
		Name:  c.Name,
		Cover: c.Cover,
		MapConfig: MapConfig{
			Scale:  c.MapScale,
			Center: [2]float64{c.MapCenterLng, c.MapCenterLat},
		},
		Description:     c.Description,
		Area:            c.Area,
		Population:      c.Population,
		Borders:         c.Borders,
		CoveredSeas:     c.CoveredSeas,
		PlacesToTravel:  c.PlacesToTravel,
		FamousMonuments: c.FamousMonuments,
	}
}

// ContinentFromDetails builds a storage row from page metadata and membership
func ContinentFromDetails(d *ContinentDetails, members []string) *ContinentPG {
	return &ContinentPG{
		Key:             ContinentKey(d.Name),
		Name:            d.Name,
		Cover:           d.Cover,
		Description:     d.Description,
		Area:            d.Area,
		Population:      d.Population,
		Borders:         d.Borders,
		CoveredSeas:     d.CoveredSeas,
		PlacesToTravel:  d.PlacesToTravel,
		FamousMonuments: d.FamousMonuments,
		Members:         members,
		MapScale:        d.MapConfig.Scale,
		MapCenterLng:    d.MapConfig.Center[0],
		MapCenterLat:    d.MapConfig.Center[1],
	}
}
