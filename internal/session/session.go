package session

import (
	"errors"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/internal/database"
)

// ErrBlocked signals that the source detected automation: a CAPTCHA wall, an
// explicit block page, or an empty 200 response. Callers treat it as a normal
// outcome that forces fallback, not as an exception.
var ErrBlocked = errors.New("source blocked the session")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// blockMarkers are substrings whose presence in a page marks it as blocked.
var blockMarkers = []string{
	"recaptcha",
	"hcaptcha",
	"px-captcha",
	"are you a human",
	"access denied",
	"unusual traffic",
	"אנא אמת",
}

// Establisher prepares fetch contexts that look like a legitimate browser and
// persists session state between runs so consecutive runs start warm.
type Establisher struct {
	db     *database.Database
	logger *logrus.Logger
	source string
}

func NewEstablisher(db *database.Database, logger *logrus.Logger, source string) *Establisher {
	return &Establisher{db: db, logger: logger, source: source}
}

// AllocatorOptions returns chromedp options for a realistic browser profile:
// desktop viewport, Hebrew locale, and automation markers disabled.
func (e *Establisher) AllocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("lang", "he-IL"),
		chromedp.UserAgent(userAgent),
	)
}

// Headers returns request headers for plain-HTTP strategies, matching the
// browser profile used by the primary strategy.
func (e *Establisher) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "he-IL,he;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}

// StealthScript is evaluated after navigation to mask the usual automation
// fingerprints the source checks for.
const StealthScript = `
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	window.chrome = window.chrome || { runtime: {} };
	Object.defineProperty(navigator, 'languages', { get: () => ['he-IL', 'he', 'en-US', 'en'] });
`

// DetectBlock inspects a fetched page for block signals. An empty-but-200
// page counts as blocked: the source serves hollow shells to suspected bots.
func DetectBlock(html string) error {
	lower := strings.ToLower(html)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return ErrBlocked
		}
	}
	if strings.TrimSpace(html) == "" {
		return ErrBlocked
	}
	return nil
}

// LoadState returns the persisted session blob for this source, or nil when
// starting cold. Load failures only downgrade to a cold start.
func (e *Establisher) LoadState() []byte {
	state, err := e.db.GetSessionState(e.source)
	if err != nil {
		e.logger.WithError(err).WithField("source", e.source).
			Warn("Failed to load persisted session state, starting cold")
		return nil
	}
	return state
}

// SaveState persists the session blob for the next run. Persistence is
// best-effort; a failure is logged and never fails the run.
func (e *Establisher) SaveState(blob []byte) {
	if len(blob) == 0 {
		return
	}
	if err := e.db.PutSessionState(e.source, blob); err != nil {
		e.logger.WithError(err).WithField("source", e.source).
			Warn("Failed to persist session state")
	}
}
