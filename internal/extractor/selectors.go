package extractor

// Candidate selectors per field, in priority order. The source renames its
// CSS classes often, so every field carries a chain of fallbacks; the first
// selector producing a non-empty match wins.
var (
	linkSelectors = []string{
		`a[href*="/item/"]`,
		"a",
	}

	titleSelectors = []string{
		"h3",
		"h4",
		`[class*="title"]`,
		`[class*="address"]`,
	}

	priceSelectors = []string{
		`[data-testid="price"]`,
		`[class*="price"]`,
	}

	roomsSelectors = []string{
		`[data-testid="rooms"]`,
		`[class*="room"]`,
		`[title*="חדרים"]`,
	}

	floorSelectors = []string{
		`[data-testid="floor"]`,
		`[class*="floor"]`,
		`[title*="קומה"]`,
	}

	squareMetersSelectors = []string{
		`[data-testid="square-meter"]`,
		`[class*="square"]`,
		`[class*="sqm"]`,
	}

	addressSelectors = []string{
		`[class*="address"]`,
		`[class*="street"]`,
	}

	descriptionSelectors = []string{
		`[class*="description"]`,
		`[data-testid="description"]`,
	}

	dateSelectors = []string{
		"time",
		`[data-testid="date"]`,
		`[class*="date"]`,
	}
)
