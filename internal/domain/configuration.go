package domain

// Configuration is the subset of the site configuration served by /api/config that the
// emails need. Unknown fields are ignored.
type Configuration struct {
	ShowName           string             `json:"showName"`
	ShowLocation       string             `json:"showLocation"`
	MapURL             string             `json:"mapUrl"`
	PriceTiers         []PriceTier        `json:"priceTiers"`
	PriceConfiguration PriceConfiguration `json:"priceConfiguration"`
}

type PriceTier struct {
	Key   string  `json:"_key"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Color string  `json:"color,omitempty"`
}

// PriceConfiguration maps a seating section to the key of the price tier it sells at.
type PriceConfiguration map[string]string

func (c Configuration) Tier(key string) (PriceTier, bool) {
	for _, t := range c.PriceTiers {
		if t.Key == key {
			return t, true
		}
	}
	return PriceTier{}, false
}

// TierFor resolves the tier of a ticket: its own tier key first, then its section.
func (c Configuration) TierFor(t Ticket) (PriceTier, bool) {
	if t.Tier != "" {
		return c.Tier(t.Tier)
	}
	if key, ok := c.PriceConfiguration[t.Section]; ok {
		return c.Tier(key)
	}
	return PriceTier{}, false
}
