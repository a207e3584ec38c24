package model

// CountryDetails is the descriptive data shown on a country page
type CountryDetails struct {
	CommonName      string            `json:"common_name"`
	OfficialName    string            `json:"official_name"`
	CCA2            string            `json:"cca2"`
	CCA3            string            `json:"cca3"`
	FlagPNG         string            `json:"flag_png"`
	CoatOfArmsPNG   string            `json:"coat_of_arms_png"`
	Population      int64             `json:"population"`
	PopulationLabel string            `json:"population_label"`
	Area            float64           `json:"area"`
	Capital         []string          `json:"capital"`
	CarSide         string            `json:"car_side"`
	Continents      []string          `json:"continents"`
	Timezones       []string          `json:"timezones"`
	Independent     bool              `json:"independent"`
	StartOfWeek     string            `json:"start_of_week"`
	Languages       map[string]string `json:"languages"`
	BorderCodes     []string          `json:"border_codes"`
	Borders         []string          `json:"borders"`
	FIFA            string            `json:"fifa"`
}

// MapConfig is a hand-tuned projection stored with continent metadata
type MapConfig struct {
	Scale  float64    `json:"scale"`
	Center [2]float64 `json:"center"`
}

// ContinentDetails is the descriptive data shown on a continent page
type ContinentDetails struct {
	Name            string    `json:"name"`
	Cover           string    `json:"cover"`
	MapConfig       MapConfig `json:"mapconfig"`
	Description     string    `json:"description"`
	Area            string    `json:"area"`
	Population      string    `json:"population"`
	Borders         string    `json:"borders"`
	CoveredSeas     []string  `json:"covered_seas"`
	PlacesToTravel  []string  `json:"places_to_travel"`
	FamousMonuments []string  `json:"famous_monuments"`
}

// EntityMetadata holds whichever details match the active entity kind
type EntityMetadata struct {
	Country   *CountryDetails   `json:"country,omitempty"`
	Continent *ContinentDetails `json:"continent,omitempty"`
}
