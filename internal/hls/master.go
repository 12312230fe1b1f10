package hls

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/grafov/m3u8"
)

// Rendition is one subtitle track to capture.
type Rendition struct {
	Name            string
	Language        string
	Characteristics string
	URL             string
	Suffix          string // output filename suffix, e.g. "fi" or "svh"
}

const hearingImpaired = "public.accessibility.transcribes-spoken-dialog"

// Output filename suffixes by (language, characteristics).
var renditionSuffixes = map[[2]string]string{
	{"fin", ""}:              "fi",
	{"fin", hearingImpaired}: "fih",
	{"swe", ""}:              "sv",
	{"swe", hearingImpaired}: "svh",
	{"smi", ""}:              "se",
	{"smi", hearingImpaired}: "seh",
	{"eng", ""}:              "en",
	{"eng", hearingImpaired}: "enh",
}

// ResolveRenditions fetches rawurl and lists the subtitle renditions it
// offers. A master playlist yields one rendition per EXT-X-MEDIA
// TYPE=SUBTITLES alternative; a media playlist yields a single rendition
// for the URL itself, so callers can pass either kind.
func ResolveRenditions(ctx context.Context, client *Client, rawurl string) ([]Rendition, error) {
	body, err := client.Get(ctx, rawurl)
	if err != nil {
		return nil, err
	}

	text := strings.TrimPrefix(string(body), "\ufeff")
	if !strings.HasPrefix(strings.TrimSpace(text), "#EXTM3U") {
		return nil, &ParseError{URL: rawurl, Err: errors.New("missing #EXTM3U header")}
	}
	pl, kind, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, &ParseError{URL: rawurl, Err: err}
	}

	if kind != m3u8.MASTER {
		return []Rendition{{URL: rawurl}}, nil
	}
	master, ok := pl.(*m3u8.MasterPlaylist)
	if !ok {
		return nil, &ParseError{URL: rawurl, Err: errors.New("unrecognized playlist type")}
	}

	base, err := url.Parse(rawurl)
	if err != nil {
		return nil, &ParseError{URL: rawurl, Err: err}
	}

	var rends []Rendition
	known := make(map[string]struct{})
	for _, variant := range master.Variants {
		if variant == nil {
			continue
		}
		for _, alt := range variant.Alternatives {
			if alt == nil || alt.Type != "SUBTITLES" || alt.URI == "" {
				continue
			}
			abs := resolveURL(base, alt.URI)
			if _, ok := known[abs]; ok {
				continue
			}
			known[abs] = struct{}{}
			rends = append(rends, Rendition{
				Name:            alt.Name,
				Language:        alt.Language,
				Characteristics: alt.Characteristics,
				URL:             abs,
				Suffix:          suffixFor(alt.Language, alt.Characteristics),
			})
		}
	}
	return rends, nil
}

func suffixFor(language, characteristics string) string {
	if s, ok := renditionSuffixes[[2]string{language, characteristics}]; ok {
		return s
	}
	return "unknown"
}
