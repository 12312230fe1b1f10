package hls

// Catalog remembers which segment URIs have already been handed to the
// download pipeline, so a segment appearing in several consecutive
// playlist snapshots is downloaded at most once. Identity is the URI
// string alone; live servers guarantee per-position uniqueness, so no
// content hashing. Everything seen is kept for the lifetime of the run;
// a live capture is bounded, so growth is not a concern.
//
// Not safe for concurrent use. The poller is its single owner.
type Catalog struct {
	seen map[string]struct{}
}

func NewCatalog() *Catalog {
	return &Catalog{seen: make(map[string]struct{})}
}

// IsNew reports whether uri has not been seen during this run.
func (c *Catalog) IsNew(uri string) bool {
	_, ok := c.seen[uri]
	return !ok
}

// MarkSeen records uri as handed to the pipeline.
func (c *Catalog) MarkSeen(uri string) {
	c.seen[uri] = struct{}{}
}

// Len returns the number of distinct segments seen.
func (c *Catalog) Len() int {
	return len(c.seen)
}
