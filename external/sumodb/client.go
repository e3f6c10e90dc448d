package sumodb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
	"github.com/jr0senblum/honbasho/internal/platform/logging"
	"github.com/jr0senblum/honbasho/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://sumodb.sumogames.de"
	maxBodyBytes   = 6 << 20

	winMarkerShiro = "hoshi_shiro.gif"
	winMarkerFusen = "hoshi_fusensho.gif"
)

// TechniqueFusen is the technique reported for forfeit outcomes,
// regardless of any technique text in the document.
const TechniqueFusen = "fusen"

// ErrResultsUnavailable marks documents that fetched fine but do not
// carry the expected content, e.g. a day whose results table has not
// been published. Fatal for the requested day; nothing partial may be
// ingested from such a document.
var ErrResultsUnavailable = crerr.New("sumodb: expected content not found")

var errSumoDBTransient = crerr.New("sumodb transient failure")

var recordParenRegex = regexp.MustCompile(`\s*\(.*?\)`)

// Bout is one parsed result row: who won, who lost, by which technique,
// with both sides' running records.
type Bout struct {
	WinnerName   string
	WinnerRecord string
	LoserName    string
	LoserRecord  string
	Technique    string
}

// SanshoAward names one special-prize winner.
type SanshoAward struct {
	Prize    string
	RingName string
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSec throttles outbound traffic; sumodb is a shared,
	// uncontrolled site.
	RequestsPerSec float64
	Logger         *logging.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	logger     *logging.Logger
	limiter    *rate.Limiter
	flight     resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// FetchDayResults fetches and parses one day's bout list. A row counts as
// a bout only when it has exactly five cells and one side carries a win
// marker; rows without a recognized marker are unscored and skipped. A
// fusen marker on either side forces the fusen technique sentinel.
func (c *Client) FetchDayResults(ctx context.Context, year, month, day int) ([]Bout, error) {
	url := fmt.Sprintf("%s/results.aspx?b=%d%02d&d=%d", c.baseURL, year, month, day)
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch day results year=%d month=%d day=%d: %w", year, month, day, err)
	}

	table := doc.Find("table.tk_table").First()
	if table.Length() == 0 {
		return nil, crerr.Wrapf(ErrResultsUnavailable, "no results table for %d%02d day %d", year, month, day)
	}

	bouts := make([]Bout, 0, 24)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 5 {
			return
		}

		leftStar, _ := cells.Eq(0).Find("img").First().Attr("src")
		rightStar, _ := cells.Eq(4).Find("img").First().Attr("src")

		var winnerCell, loserCell *goquery.Selection
		switch {
		case hasWinMarker(leftStar):
			winnerCell, loserCell = cells.Eq(1), cells.Eq(3)
		case hasWinMarker(rightStar):
			winnerCell, loserCell = cells.Eq(3), cells.Eq(1)
		default:
			return
		}

		technique := ""
		if strings.Contains(leftStar, "fusen") || strings.Contains(rightStar, "fusen") {
			technique = TechniqueFusen
		} else {
			technique = firstAlphabetic(strippedStrings(cells.Eq(2)))
		}

		winnerName, winnerRecord := extractSide(winnerCell)
		loserName, loserRecord := extractSide(loserCell)
		if winnerName == "" || loserName == "" {
			return
		}

		bouts = append(bouts, Bout{
			WinnerName:   winnerName,
			WinnerRecord: winnerRecord,
			LoserName:    loserName,
			LoserRecord:  loserRecord,
			Technique:    technique,
		})
	})

	return bouts, nil
}

// FetchBanzuke parses the Makuuchi banzuke for a basho. An absent table
// means the banzuke is not published yet and yields an empty slice.
func (c *Client) FetchBanzuke(ctx context.Context, year, month int) ([]rikishi.BanzukeSlot, error) {
	url := fmt.Sprintf("%s/Banzuke.aspx?b=%d%02d", c.baseURL, year, month)
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch banzuke year=%d month=%d: %w", year, month, err)
	}

	var table *goquery.Selection
	doc.Find("table.banzuke").EachWithBreak(func(_ int, candidate *goquery.Selection) bool {
		caption := candidate.Find("caption").First()
		if strings.Contains(caption.Text(), "Makuuchi Banzuke") {
			table = candidate
			return false
		}
		return true
	})
	if table == nil {
		return nil, nil
	}

	slots := make([]rikishi.BanzukeSlot, 0, 42)
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		rankCell := row.Find("td.short_rank").First()
		if rankCell.Length() == 0 {
			return
		}
		rankNo, err := rikishi.RankNoFromShort(strings.TrimSpace(rankCell.Text()))
		if err != nil {
			c.logger.WarnContext(ctx, "skip banzuke row with unparseable rank",
				"rank_text", strings.TrimSpace(rankCell.Text()), "error", err)
			return
		}

		rankIdx := -1
		cells := row.Find("td")
		cells.EachWithBreak(func(idx int, cell *goquery.Selection) bool {
			if cell.HasClass("short_rank") {
				rankIdx = idx
				return false
			}
			return true
		})

		cells.Each(func(idx int, cell *goquery.Selection) {
			anchor := cell.Find(`a[href^="Rikishi.aspx"]`).First()
			if anchor.Length() == 0 {
				return
			}
			side := rikishi.SideWest
			if idx < rankIdx {
				side = rikishi.SideEast
			}
			slots = append(slots, rikishi.BanzukeSlot{
				RingName: strings.TrimSpace(anchor.Text()),
				RankNo:   rankNo,
				Side:     side,
			})
		})
	})

	return slots, nil
}

// FetchSanshoWinners returns the special-prize winners of a basho. The
// sansho page lists one row per basho keyed "YYYY.MM".
func (c *Client) FetchSanshoWinners(ctx context.Context, year, month int) ([]SanshoAward, error) {
	url := c.baseURL + "/Sansho.aspx"
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch sansho winners: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, crerr.Wrap(ErrResultsUnavailable, "no sansho table")
	}

	target := fmt.Sprintf("%d.%02d", year, month)
	var targetRow *goquery.Selection
	table.Find("tr").EachWithBreak(func(idx int, row *goquery.Selection) bool {
		if idx == 0 {
			return true
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return true
		}
		if strings.TrimSpace(cells.Eq(0).Text()) == target {
			targetRow = row
			return false
		}
		return true
	})
	if targetRow == nil {
		return nil, crerr.Wrapf(ErrResultsUnavailable, "no sansho row for %s", target)
	}

	prizes := []string{"Gino-sho", "Shukun-sho", "Kanto-sho"}
	cells := targetRow.Find("td")
	awards := make([]SanshoAward, 0, len(prizes))
	for idx, prize := range prizes {
		cell := cells.Eq(idx + 1)
		text := strings.TrimSpace(cell.Text())
		if text == "" || strings.Contains(strings.ToLower(text), "not awarded") {
			continue
		}
		cell.Find("a").Each(func(_ int, anchor *goquery.Selection) {
			// Anchor text carries a rank prefix, e.g. "M14e Kusano".
			parts := strings.Fields(strings.TrimSpace(anchor.Text()))
			if len(parts) == 0 {
				return
			}
			awards = append(awards, SanshoAward{Prize: prize, RingName: parts[len(parts)-1]})
		})
	}

	return awards, nil
}

// FetchYushoWinner scans the plain-text results block for the Makuuchi
// section and returns the ring name with the most wins, or "" when the
// division has no decided champion yet.
func (c *Client) FetchYushoWinner(ctx context.Context, year, month int) (string, error) {
	url := fmt.Sprintf("%s/Results_text.aspx?b=%d%02d", c.baseURL, year, month)
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch yusho winner: %w", err)
	}

	pre := doc.Find("pre").First()
	if pre.Length() == 0 {
		return "", crerr.Wrap(ErrResultsUnavailable, "no results text block")
	}

	inMakuuchi := false
	mostWins := -1
	winner := ""
	for _, line := range strings.Split(pre.Text(), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "Makuuchi":
			inMakuuchi = true
			continue
		case inMakuuchi && isDivisionHeading(line):
			return winner, nil
		case !inMakuuchi:
			continue
		}

		parts := splitColumns(line)
		for _, idx := range []int{1, 4} {
			if idx >= len(parts) {
				continue
			}
			name, wins, ok := parseNameRecord(parts[idx])
			if !ok {
				continue
			}
			if wins > mostWins {
				mostWins = wins
				winner = name
			}
		}
	}

	return winner, nil
}

func (c *Client) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	out, err, _ := c.flight.Do(url, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.executeRequest(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (c *Client) executeRequest(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "text/html")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSumoDBTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSumoDBTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: status=%d", errSumoDBTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("sumodb status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("sumodb request failed")
	}
	c.logger.WarnContext(ctx, "sumodb request failed", "url", url, "error", lastErr)
	return nil, lastErr
}

func hasWinMarker(src string) bool {
	return strings.Contains(src, winMarkerShiro) || strings.Contains(src, winMarkerFusen)
}

func extractSide(cell *goquery.Selection) (name, record string) {
	name = strings.TrimSpace(cell.Find(`a[href^="Rikishi.aspx"]`).First().Text())
	raw := strings.TrimSpace(cell.Find(`a[href*="Rikishi_basho.aspx"]`).First().Text())
	record = strings.TrimSpace(recordParenRegex.ReplaceAllString(raw, ""))
	return name, record
}

// strippedStrings mimics walking every text node of a cell, trimmed, in
// document order.
func strippedStrings(sel *goquery.Selection) []string {
	var out []string
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if text := strings.TrimSpace(child.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func firstAlphabetic(candidates []string) string {
	for _, s := range candidates {
		if isAlphabetic(s) {
			return s
		}
	}
	return ""
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isDivisionHeading(line string) bool {
	if len(line) < 2 {
		return false
	}
	return line[0] >= 'A' && line[0] <= 'Z' && line[1] >= 'a' && line[1] <= 'z'
}

var columnSplitRegex = regexp.MustCompile(`\s{2,}`)

func splitColumns(line string) []string {
	return columnSplitRegex.Split(line, -1)
}

// parseNameRecord pulls "Takanofuji (12-3)" apart, returning the ring
// name and win count.
func parseNameRecord(part string) (string, int, bool) {
	open := strings.Index(part, " (")
	if open < 0 || !strings.Contains(part, ")") {
		return "", 0, false
	}
	name := strings.TrimSpace(part[:open])
	rest := part[open+2:]
	end := strings.Index(rest, ")")
	if end < 0 {
		return "", 0, false
	}
	record := rest[:end]
	winsText, _, _ := strings.Cut(record, "-")
	wins, err := strconv.Atoi(strings.TrimSpace(winsText))
	if err != nil {
		return "", 0, false
	}
	return name, wins, true
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
