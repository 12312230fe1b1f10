package hls

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/grafov/m3u8"
)

// Playlist is one snapshot of a live media playlist. Snapshots are
// replaced wholesale on every reload, never mutated.
type Playlist struct {
	Segments       []Segment
	TargetDuration time.Duration
	Ended          bool
}

// Segment describes one entry of a media playlist. The absolute URI is
// the segment's identity: unique within the live window, but it may
// scroll out of the playlist over time.
type Segment struct {
	URI         string
	Seq         uint64
	Duration    time.Duration
	ProgramTime time.Time // zero when the playlist carries no date-time tag
}

// FetchMediaPlaylist retrieves and decodes one media playlist snapshot.
// It never retries; reload policy belongs to the poller. Network and HTTP
// failures are *FetchError, a malformed body on a successful response is
// *ParseError.
func FetchMediaPlaylist(ctx context.Context, client *Client, rawurl string) (*Playlist, error) {
	body, err := client.Get(ctx, rawurl)
	if err != nil {
		return nil, err
	}

	media, err := decodeMediaPlaylist(body)
	if err != nil {
		return nil, &ParseError{URL: rawurl, Err: err}
	}

	base, err := url.Parse(rawurl)
	if err != nil {
		return nil, &ParseError{URL: rawurl, Err: err}
	}

	pl := &Playlist{
		TargetDuration: time.Duration(media.TargetDuration * float64(time.Second)),
		Ended:          media.Closed,
	}
	for _, seg := range media.Segments {
		if seg == nil {
			continue
		}
		pl.Segments = append(pl.Segments, Segment{
			URI:         resolveURL(base, seg.URI),
			Seq:         seg.SeqId,
			Duration:    time.Duration(seg.Duration * float64(time.Second)),
			ProgramTime: seg.ProgramDateTime,
		})
	}
	return pl, nil
}

func decodeMediaPlaylist(body []byte) (*m3u8.MediaPlaylist, error) {
	text := strings.TrimPrefix(string(body), "\ufeff")
	if !strings.HasPrefix(strings.TrimSpace(text), "#EXTM3U") {
		return nil, errors.New("missing #EXTM3U header")
	}
	pl, kind, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, err
	}
	media, ok := pl.(*m3u8.MediaPlaylist)
	if !ok || kind != m3u8.MEDIA {
		return nil, errors.New("not a media playlist")
	}
	return media, nil
}

// resolveURL makes ref absolute relative to base. An unparseable ref is
// returned as is; the later fetch reports the real error.
func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
