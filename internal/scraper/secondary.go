package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/extractor"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
	"github.com/avifenesh/finding-apartment-tlv/internal/session"
)

const secondaryBaseURL = "https://www.madlan.co.il"

// secondaryCardSelectors locate listing cards on the mirror site.
var secondaryCardSelectors = []string{
	".MadlanListingCard",
	`[class*="ListingCard"]`,
	`[class*="listing-card"]`,
}

// Secondary fetches listings from the mirror site over plain HTTP. The
// mirror's search is city-wide, so listings are mapped back to a catalog
// neighborhood by name when possible.
type Secondary struct {
	cfg    *config.Config
	est    *session.Establisher
	ex     *extractor.Extractor
	pacer  *Pacer
	logger *logrus.Logger
}

func NewSecondary(cfg *config.Config, est *session.Establisher, pacer *Pacer, logger *logrus.Logger) *Secondary {
	return &Secondary{
		cfg:    cfg,
		est:    est,
		ex:     extractor.NewForSource(cfg.Scraping.DefaultRooms, secondaryBaseURL),
		pacer:  pacer,
		logger: logger,
	}
}

func (s *Secondary) Name() string {
	return "secondary"
}

func (s *Secondary) Fetch(ctx context.Context, filters Filters) ([]models.RawListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains("www.madlan.co.il", "madlan.co.il"),
		colly.UserAgent(s.est.Headers()["User-Agent"]),
	)
	c.SetRequestTimeout(s.cfg.Scraping.PageLoadTimeout)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		RandomDelay: s.pacer.Max(),
	})

	headers := s.est.Headers()
	c.OnRequest(func(r *colly.Request) {
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	})

	var (
		all      []models.RawListing
		seen     = make(map[string]bool)
		fetchErr error
	)
	now := time.Now()

	c.OnResponse(func(r *colly.Response) {
		if err := session.DetectBlock(string(r.Body)); err != nil {
			fetchErr = err
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = Transient("secondary fetch", err)
	})

	for _, selector := range secondaryCardSelectors {
		c.OnHTML(selector, func(e *colly.HTMLElement) {
			hood := matchNeighborhood(e.Text, filters.Neighborhoods)
			raw, err := s.ex.Extract(e.DOM, hood, now)
			if err != nil {
				s.logger.WithError(err).Debug("Skipping fragment")
				return
			}
			if seen[raw.ExternalID] {
				return
			}
			seen[raw.ExternalID] = true
			all = append(all, raw)
		})
	}

	if err := c.Visit(s.searchURL(filters)); err != nil {
		return nil, Transient("secondary visit", err)
	}

	if fetchErr != nil {
		if errors.Is(fetchErr, session.ErrBlocked) {
			// A blocked page is untrustworthy even if some cards parsed.
			return nil, fetchErr
		}
		if len(all) == 0 {
			return nil, fetchErr
		}
	}
	return all, nil
}

func (s *Secondary) searchURL(filters Filters) string {
	return fmt.Sprintf("%s/listings/rent/%s?price=1-%d&rooms=%g-%g",
		secondaryBaseURL,
		url.PathEscape("תל-אביב-יפו"),
		filters.MaxPrice,
		filters.MinRooms,
		filters.MaxRooms,
	)
}

// matchNeighborhood maps a city-wide listing card back to a catalog
// neighborhood by name mention, defaulting to a city-level bucket.
func matchNeighborhood(text string, hoods []config.Neighborhood) config.Neighborhood {
	for _, hood := range hoods {
		if hood.Name != "" && strings.Contains(text, hood.Name) {
			return hood
		}
	}
	return config.Neighborhood{ID: "0", Name: "תל אביב"}
}
