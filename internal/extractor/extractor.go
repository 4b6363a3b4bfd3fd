package extractor

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

// ErrNoExternalID means a fragment carried no extractable listing identifier.
// Such fragments are skipped; every other field can fall back to a default.
var ErrNoExternalID = errors.New("fragment has no extractable listing id")

const (
	// BaseURL prefixes relative listing links.
	BaseURL = "https://www.yad2.co.il"

	// DefaultTitle stands in when no title field matches.
	DefaultTitle = "דירה בתל אביב"

	maxImages = 5
)

var (
	externalIDPattern = regexp.MustCompile(`/(?:item|listings)/([^/?#]+)`)
	nonDigitPattern   = regexp.MustCompile(`[^\d]`)
	roomsPattern      = regexp.MustCompile(`(\d+(?:[.,]\d)?)`)
	numberPattern     = regexp.MustCompile(`\d+`)
)

// Extractor turns a single listing fragment into a RawListing, applying
// per-field selector chains and falling back to defaults rather than
// rejecting the fragment.
type Extractor struct {
	// DefaultRooms is used when no room count can be parsed.
	DefaultRooms float64
	// BaseURL prefixes relative listing links; defaults to the primary source.
	BaseURL string
}

func New(defaultRooms float64) *Extractor {
	return &Extractor{DefaultRooms: defaultRooms, BaseURL: BaseURL}
}

// NewForSource returns an extractor resolving relative links against a
// different source origin.
func NewForSource(defaultRooms float64, baseURL string) *Extractor {
	return &Extractor{DefaultRooms: defaultRooms, BaseURL: baseURL}
}

// Extract pulls all listing fields out of one fragment. The returned listing
// is marked low-confidence when any required field fell back to its default.
// Only a missing external ID makes the fragment unusable.
func (e *Extractor) Extract(fragment *goquery.Selection, hood config.Neighborhood, now time.Time) (models.RawListing, error) {
	link, externalID := e.extractLink(fragment)
	if externalID == "" {
		return models.RawListing{}, ErrNoExternalID
	}

	raw := models.RawListing{
		ExternalID:     externalID,
		Link:           link,
		Neighborhood:   hood.Name,
		NeighborhoodID: hood.ID,
	}

	title := firstText(fragment, titleSelectors)
	if title == "" {
		title = DefaultTitle
		raw.LowConfidence = true
	}
	raw.Title = title

	priceText := firstText(fragment, priceSelectors)
	if priceText == "" {
		priceText = textContaining(fragment, "span", "₪")
	}
	price, ok := ParsePrice(priceText)
	if !ok {
		raw.LowConfidence = true
	}
	raw.Price = price

	roomsText := firstText(fragment, roomsSelectors)
	if roomsText == "" {
		roomsText = textContaining(fragment, "span", "חדרים")
	}
	rooms, ok := ParseRooms(roomsText)
	if !ok {
		rooms = e.DefaultRooms
		raw.LowConfidence = true
	}
	raw.Rooms = rooms

	address := firstText(fragment, addressSelectors)
	if address == "" {
		// The source often folds the street address into the title.
		address = title
	}
	raw.Address = address

	if sqmText := firstText(fragment, squareMetersSelectors); sqmText != "" {
		if sqm, ok := ParseInt(sqmText); ok {
			raw.SquareMeters = &sqm
		}
	}
	if floor := firstText(fragment, floorSelectors); floor != "" {
		raw.Floor = &floor
	}
	if desc := firstText(fragment, descriptionSelectors); desc != "" {
		raw.Description = &desc
	}

	raw.Images = extractImages(fragment)
	raw.PublishDate = ParseRelativeDate(firstText(fragment, dateSelectors), now)

	return raw, nil
}

// extractLink finds the listing link and derives the external ID from it.
func (e *Extractor) extractLink(fragment *goquery.Selection) (link, externalID string) {
	for _, selector := range linkSelectors {
		fragment.Find(selector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, exists := a.Attr("href")
			if !exists || href == "" {
				return true
			}
			if !strings.HasPrefix(href, "http") {
				href = e.BaseURL + href
			}
			if m := externalIDPattern.FindStringSubmatch(href); m != nil {
				link = href
				externalID = m[1]
				return false
			}
			return true
		})
		if externalID != "" {
			return link, externalID
		}
	}

	// Some layouts carry the ID as a data attribute instead of a link.
	if id, exists := fragment.Attr("data-item-id"); exists && id != "" {
		return "", id
	}
	return "", ""
}

// ParsePrice strips everything but digits and parses the remainder, so
// "8,500 ₪" comes back as 8500.
func ParsePrice(s string) (int, bool) {
	digits := nonDigitPattern.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	price, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return price, true
}

// ParseRooms parses a room count with up to one decimal digit, accepting
// either a dot or a comma separator ("3.5 חדרים" → 3.5).
func ParseRooms(s string) (float64, bool) {
	m := roomsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	rooms, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || rooms <= 0 {
		return 0, false
	}
	return rooms, true
}

// ParseInt extracts the first integer in the string.
func ParseInt(s string) (int, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// firstText returns the text of the first selector in the chain that matches
// a non-empty element.
func firstText(fragment *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		var found string
		fragment.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// textContaining scans elements of the given tag for one whose text contains
// the marker, e.g. any span mentioning "₪".
func textContaining(fragment *goquery.Selection, tag, marker string) string {
	var found string
	fragment.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.Contains(text, marker) {
			found = text
			return false
		}
		return true
	})
	return found
}

func extractImages(fragment *goquery.Selection) []string {
	var images []string
	fragment.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, exists := img.Attr("src")
		if exists && src != "" && !strings.Contains(strings.ToLower(src), "placeholder") {
			images = append(images, src)
		}
		return len(images) < maxImages
	})
	return images
}
