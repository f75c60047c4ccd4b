// Package browser drives the watched Chromium page through
// Playwright. It implements the engine's location probe and
// navigator against the page's query parameters.
package browser

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/sadopc/studyfocus/internal/analyze"
)

// ErrNotOnTargetSite reports that the watched page is not on YouTube,
// so monitoring or analysis cannot proceed.
var ErrNotOnTargetSite = errors.New("current page is not on youtube.com")

const (
	watchBaseURL    = "https://www.youtube.com/watch"
	playlistBaseURL = "https://www.youtube.com/playlist"
	homeURL         = "https://www.youtube.com"
)

// Selectors for playlist scraping.
const (
	playlistTitleSelector = "yt-formatted-string.title.style-scope.ytd-playlist-panel-renderer"
	videoTitleSelector    = "span#video-title"
)

// Browser owns the Playwright instance and the single watched page.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// Launch installs Playwright if needed, starts a headed Chromium and
// opens the YouTube home page as the watched tab.
func Launch() (*Browser, error) {
	// Keep driver output away from the TUI.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(false),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	context, err := b.NewContext()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("create page: %w", err)
	}

	if _, err := page.Goto(homeURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("open youtube: %w", err)
	}

	return &Browser{pw: pw, browser: b, context: context, page: page}, nil
}

// Close shuts the browser and the Playwright driver down.
func (b *Browser) Close() error {
	var firstErr error
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PlaylistID implements watch.LocationProbe.
func (b *Browser) PlaylistID() string {
	return playlistIDFromURL(b.page.URL())
}

// VideoID implements watch.LocationProbe.
func (b *Browser) VideoID() string {
	return videoIDFromURL(b.page.URL())
}

// Navigate implements watch.Navigator. With a video id it opens the
// video inside the playlist, otherwise the playlist page itself.
func (b *Browser) Navigate(playlistID, videoID string) error {
	if playlistID == "" {
		return errors.New("no playlist to navigate to")
	}
	_, err := b.page.Goto(targetURL(playlistID, videoID), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", playlistID, err)
	}
	return nil
}

// EnsureOnSite verifies the watched page is on YouTube.
func (b *Browser) EnsureOnSite() error {
	if !isYouTubeURL(b.page.URL()) {
		return ErrNotOnTargetSite
	}
	return nil
}

// PlaylistInfo scrapes the open playlist's title and video titles for
// scoring. It fails when the page has no playlist context.
func (b *Browser) PlaylistInfo() (analyze.PlaylistInfo, error) {
	if err := b.EnsureOnSite(); err != nil {
		return analyze.PlaylistInfo{}, err
	}
	id := b.PlaylistID()
	if id == "" {
		return analyze.PlaylistInfo{}, errors.New("no playlist found, open a playlist first")
	}

	info := analyze.PlaylistInfo{ID: id}

	if title, err := b.page.Locator(playlistTitleSelector).First().TextContent(
		playwright.LocatorTextContentOptions{Timeout: playwright.Float(2000)},
	); err == nil {
		info.Title = strings.TrimSpace(title)
	}

	titles, err := b.page.Locator(videoTitleSelector).AllInnerTexts()
	if err != nil {
		return info, fmt.Errorf("read video titles: %w", err)
	}
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			info.VideoTitles = append(info.VideoTitles, t)
		}
	}
	return info, nil
}

// --- URL helpers ---

func playlistIDFromURL(rawURL string) string {
	return queryParam(rawURL, "list")
}

func videoIDFromURL(rawURL string) string {
	return queryParam(rawURL, "v")
}

func queryParam(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

func isYouTubeURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

func targetURL(playlistID, videoID string) string {
	params := url.Values{}
	if videoID != "" {
		params.Set("v", videoID)
		params.Set("list", playlistID)
		return watchBaseURL + "?" + params.Encode()
	}
	params.Set("list", playlistID)
	return playlistBaseURL + "?" + params.Encode()
}
