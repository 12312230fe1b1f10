package hls

import (
	"context"
	"encoding/binary"
	"io"
	"math/rand"
	"net/http"
	"net/netip"
	"time"
)

const userAgent = "yle-subtitle-dl"

// Client performs the HTTP retrievals for playlists and segments. Every
// request carries an X-Forwarded-For header with a random address from a
// Finnish consumer block; the stream servers reject foreign clients.
type Client struct {
	http    *http.Client
	forward string
}

// NewClient returns a client whose individual requests time out after the
// given duration.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		forward: randomElisaAddr(),
	}
}

// Get retrieves url and returns the response body. Transport failures and
// non-2xx statuses are reported as *FetchError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Forwarded-For", c.forward)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

// randomElisaAddr picks a random host address from Elisa's 91.152.0.0/13
// block, excluding the network and broadcast addresses.
func randomElisaAddr() string {
	base := binary.BigEndian.Uint32([]byte{91, 152, 0, 0})
	hosts := uint32(1)<<19 - 2
	addr := base + 1 + uint32(rand.Int63n(int64(hosts)))

	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)
	return netip.AddrFrom4(b).String()
}
