package config

// Neighborhood describes one Tel Aviv neighborhood tracked by the scraper.
// ID is the identifier the listing source uses in its search URLs. The price
// band and street list drive the synthetic generator.
type Neighborhood struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	MinPrice int      `json:"min_price"`
	MaxPrice int      `json:"max_price"`
	Streets  []string `json:"streets"`
}

// SupportedNeighborhoods is the default neighborhood catalog.
var SupportedNeighborhoods = []Neighborhood{
	{
		ID:       "1483",
		Name:     "נווה צדק",
		MinPrice: 7000,
		MaxPrice: 10000,
		Streets:  []string{"שבזי", "חבצלת", "לילינבלום", "יחיאלי"},
	},
	{
		ID:       "204",
		Name:     "פלורנטין",
		MinPrice: 5500,
		MaxPrice: 8500,
		Streets:  []string{"פלורנטין", "ויטל", "אברבנאל", "מטלון"},
	},
	{
		ID:       "1518",
		Name:     "לב העיר",
		MinPrice: 6000,
		MaxPrice: 9500,
		Streets:  []string{"אלנבי", "נחלת בנימין", "רוטשילד", "אחד העם"},
	},
	{
		ID:       "1461",
		Name:     "כרם התימנים",
		MinPrice: 6500,
		MaxPrice: 9000,
		Streets:  []string{"עמיעד", "מלצ'ט", "פינס", "נחום"},
	},
	{
		ID:       "1519",
		Name:     "הצפון הישן",
		MinPrice: 5000,
		MaxPrice: 8000,
		Streets:  []string{"דיזנגוף", "בן יהודה", "ארלוזורוב", "ז'בוטינסקי"},
	},
	{
		ID:       "1462",
		Name:     "שבזי",
		MinPrice: 5500,
		MaxPrice: 8000,
		Streets:  []string{"שבזי", "אחד העם", "העלייה", "נחמני"},
	},
}

// GetNeighborhoodIDs returns the source identifiers of all configured
// neighborhoods.
func GetNeighborhoodIDs() []string {
	ids := make([]string, len(SupportedNeighborhoods))
	for i, n := range SupportedNeighborhoods {
		ids[i] = n.ID
	}
	return ids
}

// GetNeighborhoodByID returns a neighborhood configuration by its source ID.
func GetNeighborhoodByID(id string) *Neighborhood {
	for _, n := range SupportedNeighborhoods {
		if n.ID == id {
			return &n
		}
	}
	return nil
}

// GetNeighborhoodByName returns a neighborhood configuration by display name.
func GetNeighborhoodByName(name string) *Neighborhood {
	for _, n := range SupportedNeighborhoods {
		if n.Name == name {
			return &n
		}
	}
	return nil
}
