package beatmapset

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/levigross/grequests"

	"maptools/dotosu"
)

const DefaultBaseURL = "https://osu.ppy.sh"

// HTTPSource fetches beatmaps and beatmap sets from the osu! website.
type HTTPSource struct {
	BaseURL string
	// Session is the osu_session cookie. Set downloads need it.
	Session  string
	Throttle *Throttle
	Timeout  time.Duration
	// MinBackoff is the shortest wait after the server refused a request.
	MinBackoff time.Duration

	rateLimitedFrom atomic.Pointer[time.Time]
}

func NewHTTPSource(baseURL, session string, throttle *Throttle) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if throttle == nil {
		throttle = DefaultThrottle()
	}
	return &HTTPSource{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Session:    session,
		Throttle:   throttle,
		Timeout:    10 * time.Minute,
		MinBackoff: time.Minute,
	}
}

// rateLimited returns how long to back off. The wait grows with the time spent
// rate limited.
func (h *HTTPSource) rateLimited() time.Duration {
	lastLimit := h.rateLimitedFrom.Load()
	now := time.Now()
	h.rateLimitedFrom.CompareAndSwap(nil, &now)
	if lastLimit != nil {
		return max(h.MinBackoff, time.Since(*lastLimit))
	}
	return h.MinBackoff
}

// FetchBeatmap downloads the .osu file of one difficulty.
func (h *HTTPSource) FetchBeatmap(ctx context.Context, beatmapID int) (*MemFile, error) {
	data, err := h.fetch(ctx, fmt.Sprintf("%s/osu/%d", h.BaseURL, beatmapID), "")
	if err != nil {
		return nil, err
	}
	return NewMemFile(fmt.Sprintf("%d.osu", beatmapID), data), nil
}

// FetchAndDecode downloads and decodes one difficulty.
func (h *HTTPSource) FetchAndDecode(ctx context.Context, beatmapID int) (*dotosu.Beatmap, error) {
	f, err := h.FetchBeatmap(ctx, beatmapID)
	if err != nil {
		return nil, err
	}
	return dotosu.DecodeSource(f)
}

// FetchSet downloads a .osz archive and opens it as a set.
func (h *HTTPSource) FetchSet(ctx context.Context, setID int) (*Set, error) {
	referer := fmt.Sprintf("%s/beatmapsets/%d", h.BaseURL, setID)
	data, err := h.fetch(ctx, referer+"/download", referer)
	if err != nil {
		return nil, err
	}
	s, err := OpenOsz(ctx, bytes.NewReader(data), int64(len(data)))
	if s != nil {
		s.Location = referer
	}
	if err != nil {
		return s, fmt.Errorf("set %d: %w", setID, err)
	}
	return s, nil
}

// fetch retries while the server refuses or rate limits and gives up on other errors.
func (h *HTTPSource) fetch(ctx context.Context, url, referer string) ([]byte, error) {
	release, err := h.Throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	for {
		body, err := h.get(ctx, url, referer)
		if (err != nil && strings.Contains(err.Error(), "connection refused")) ||
			bytes.Contains(body, []byte("Slow down, play more.")) {
			cooldown := h.rateLimited()
			log.Printf("rate limited on %s, retrying in %s", url, cooldown)
			select {
			case <-time.After(cooldown):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		h.rateLimitedFrom.Store(nil)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		return body, nil
	}
}

func (h *HTTPSource) get(ctx context.Context, url, referer string) ([]byte, error) {
	ro := &grequests.RequestOptions{
		Context:        ctx,
		RequestTimeout: h.Timeout,
		UserAgent:      "maptools",
		Headers: map[string]string{
			"Accept":        "*/*",
			"Cache-Control": "no-cache",
		},
	}
	if referer != "" {
		ro.Headers["Referer"] = referer
	}
	if h.Session != "" {
		ro.Cookies = []*http.Cookie{{Name: "osu_session", Value: h.Session}}
	}
	log.Printf("GET %s", url)
	resp, err := grequests.Get(url, grequests.FromRequestOptions(ro))
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	body := resp.Bytes()
	if !resp.Ok {
		return body, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}
