package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/extractor"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
	"github.com/avifenesh/finding-apartment-tlv/internal/session"
)

const primaryHomeURL = "https://www.yad2.co.il"

// fragmentSelectors locate listing cards in the primary source's feed. The
// site rotates class names, so several generations of selectors are kept.
var fragmentSelectors = []string{
	`[data-testid="feed-item"]`,
	".feed_item",
	`[class*="feeditem"]`,
	`[class*="feed-item"]`,
	`div[class*="item_container"]`,
	`article[class*="item"]`,
	`div[class*="listing"]`,
}

// Primary fetches listings from the primary source through a headless
// browser, per neighborhood, with a warm-up navigation to the homepage and
// persisted cookies replayed from the previous run.
type Primary struct {
	cfg    *config.Config
	est    *session.Establisher
	ex     *extractor.Extractor
	pacer  *Pacer
	logger *logrus.Logger
}

func NewPrimary(cfg *config.Config, est *session.Establisher, ex *extractor.Extractor, pacer *Pacer, logger *logrus.Logger) *Primary {
	return &Primary{cfg: cfg, est: est, ex: ex, pacer: pacer, logger: logger}
}

func (s *Primary) Name() string {
	return "primary"
}

func (s *Primary) Fetch(ctx context.Context, filters Filters) ([]models.RawListing, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.est.AllocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if err := s.establish(browserCtx); err != nil {
		return nil, err
	}

	now := time.Now()
	var all []models.RawListing
	for i, hood := range filters.Neighborhoods {
		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		listings, err := s.fetchNeighborhood(browserCtx, filters, hood, now)
		if err != nil {
			if errors.Is(err, session.ErrBlocked) {
				return nil, err
			}
			// One failed neighborhood does not abort the run.
			s.logger.WithError(err).WithFields(logrus.Fields{
				"neighborhood": hood.Name,
				"strategy":     s.Name(),
			}).Warn("Neighborhood fetch failed")
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"neighborhood": hood.Name,
			"listings":     len(listings),
		}).Info("Neighborhood fetched")
		all = append(all, listings...)
	}

	if len(all) > 0 {
		s.persistSession(browserCtx)
	}
	return all, nil
}

// establish warms the session on the homepage, replays persisted cookies, and
// checks that the source has not already walled us off.
func (s *Primary) establish(browserCtx context.Context) error {
	tctx, cancel := context.WithTimeout(browserCtx, s.cfg.Scraping.PageLoadTimeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(primaryHomeURL),
		chromedp.Evaluate(session.StealthScript, nil),
	}
	if state := s.est.LoadState(); state != nil {
		actions = append(actions, chromedp.Evaluate(restoreCookiesScript(state), nil))
	}

	var html string
	actions = append(actions,
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)

	if err := chromedp.Run(tctx, actions...); err != nil {
		return Transient("establish session", err)
	}
	return session.DetectBlock(html)
}

func (s *Primary) fetchNeighborhood(browserCtx context.Context, filters Filters, hood config.Neighborhood, now time.Time) ([]models.RawListing, error) {
	tctx, cancel := context.WithTimeout(browserCtx, s.cfg.Scraping.PageLoadTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(tctx,
		chromedp.Navigate(s.searchURL(filters, hood.ID)),
		chromedp.Sleep(2*time.Second),
		// Trigger lazy-loaded cards before grabbing the page.
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, Transient(fmt.Sprintf("fetch neighborhood %s", hood.ID), err)
	}
	if err := session.DetectBlock(html); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Transient("parse page", err)
	}

	fragments := findFragments(doc)
	if fragments == nil {
		return nil, nil
	}

	var listings []models.RawListing
	fragments.Each(func(_ int, fragment *goquery.Selection) {
		raw, err := s.ex.Extract(fragment, hood, now)
		if err != nil {
			// Bad fragments are skipped, never fatal.
			s.logger.WithError(err).Debug("Skipping fragment")
			return
		}
		listings = append(listings, raw)
	})
	return listings, nil
}

func (s *Primary) searchURL(filters Filters, neighborhoodID string) string {
	return fmt.Sprintf(
		"%s/realestate/rent?maxPrice=%d&minRooms=%s&maxRooms=%s&city=5000&neighborhood=%s",
		primaryHomeURL,
		filters.MaxPrice,
		strconv.FormatFloat(filters.MinRooms, 'f', -1, 64),
		strconv.FormatFloat(filters.MaxRooms, 'f', -1, 64),
		neighborhoodID,
	)
}

// persistSession saves the browser cookies so the next run starts warm.
// Best-effort only.
func (s *Primary) persistSession(browserCtx context.Context) {
	tctx, cancel := context.WithTimeout(browserCtx, s.cfg.Scraping.ElementWaitTimeout)
	defer cancel()

	var cookies string
	if err := chromedp.Run(tctx, chromedp.Evaluate(`document.cookie`, &cookies)); err != nil {
		s.logger.WithError(err).Debug("Could not read cookies for persistence")
		return
	}
	s.est.SaveState([]byte(cookies))
}

func restoreCookiesScript(state []byte) string {
	return fmt.Sprintf(`%s.split("; ").forEach(function(c) { document.cookie = c; });`,
		strconv.Quote(string(state)))
}

// findFragments returns the first fragment selector generation that matches
// anything on the page.
func findFragments(doc *goquery.Document) *goquery.Selection {
	for _, selector := range fragmentSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel
		}
	}
	return nil
}
