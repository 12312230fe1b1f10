package hls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const masterPlaylist = `#EXTM3U
#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID="subs",NAME="Suomeksi",LANGUAGE="fin",AUTOSELECT=YES,URI="subs/fin/playlist.m3u8"
#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID="subs",NAME="Ohjelmatekstitys",LANGUAGE="fin",AUTOSELECT=YES,CHARACTERISTICS="public.accessibility.transcribes-spoken-dialog",URI="subs/fih/playlist.m3u8"
#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID="subs",NAME="På svenska",LANGUAGE="swe",AUTOSELECT=YES,URI="subs/swe/playlist.m3u8"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="suomi",LANGUAGE="fin",URI="audio/fin/playlist.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=1280000,SUBTITLES="subs",AUDIO="audio"
video/low/playlist.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2560000,SUBTITLES="subs",AUDIO="audio"
video/high/playlist.m3u8
`

func TestResolveRenditionsMaster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(masterPlaylist))
		}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	rends, err := ResolveRenditions(context.Background(), client, srv.URL+"/master.m3u8")
	if err != nil {
		t.Fatalf("ResolveRenditions failed: %v", err)
	}

	// both variants reference the same subtitle group; each rendition
	// must appear once, audio not at all
	if len(rends) != 3 {
		t.Fatalf("expected 3 renditions, got %d: %v", len(rends), rends)
	}

	bySuffix := make(map[string]Rendition)
	for _, r := range rends {
		bySuffix[r.Suffix] = r
	}

	fi, ok := bySuffix["fi"]
	if !ok {
		t.Fatal("missing plain Finnish rendition")
	}
	if fi.URL != srv.URL+"/subs/fin/playlist.m3u8" {
		t.Errorf("rendition URL not resolved: %s", fi.URL)
	}
	if fi.Language != "fin" {
		t.Errorf("unexpected language %q", fi.Language)
	}

	if _, ok := bySuffix["fih"]; !ok {
		t.Error("missing hearing-impaired Finnish rendition")
	}
	if _, ok := bySuffix["sv"]; !ok {
		t.Error("missing Swedish rendition")
	}
}

func TestResolveRenditionsMediaPlaylist(t *testing.T) {
	body := "#EXTM3U\n#EXT-X-TARGETDURATION:6\n#EXT-X-MEDIA-SEQUENCE:0\n" +
		"#EXTINF:6.000,\nseg0.webvtt\n"
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	url := srv.URL + "/subs/fin/playlist.m3u8"
	rends, err := ResolveRenditions(context.Background(), client, url)
	if err != nil {
		t.Fatal(err)
	}

	if len(rends) != 1 {
		t.Fatalf("expected 1 rendition, got %d", len(rends))
	}
	if rends[0].URL != url {
		t.Errorf("expected rendition for the URL itself, got %s", rends[0].URL)
	}
	if rends[0].Suffix != "" {
		t.Errorf("direct media playlist should have no suffix, got %q", rends[0].Suffix)
	}
}

func TestSuffixFor(t *testing.T) {
	tests := []struct {
		language        string
		characteristics string
		want            string
	}{
		{"fin", "", "fi"},
		{"fin", hearingImpaired, "fih"},
		{"swe", "", "sv"},
		{"swe", hearingImpaired, "svh"},
		{"smi", "", "se"},
		{"eng", hearingImpaired, "enh"},
		{"deu", "", "unknown"},
		{"fin", "some.other.characteristic", "unknown"},
	}

	for _, tt := range tests {
		if got := suffixFor(tt.language, tt.characteristics); got != tt.want {
			t.Errorf("suffixFor(%q, %q) = %q, want %q",
				tt.language, tt.characteristics, got, tt.want)
		}
	}
}
