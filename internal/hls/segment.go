package hls

import "context"

// DownloadSegment retrieves the raw payload of one subtitle segment.
// Failures are *FetchError; the poller skips the segment and keeps pace
// with the live stream rather than aborting.
func DownloadSegment(ctx context.Context, client *Client, uri string) ([]byte, error) {
	return client.Get(ctx, uri)
}
