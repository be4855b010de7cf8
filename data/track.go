package data

import "fmt"

// Track is one hydrated track record. The four engagement metrics are
// pointers: the bulk endpoint intermittently returns them null, and null is
// not the same thing as zero plays. A track with any nil metric is considered
// incomplete and gets re-hydrated by the repair loop.
type Track struct {
	URN          string
	Title        string
	PermalinkURL string
	ArtworkURL   string

	PlaybackCount *int64
	LikesCount    *int64
	CommentCount  *int64
	RepostsCount  *int64

	Access     string
	Streamable bool

	CreatedAt    string
	ReleaseYear  *int
	ReleaseMonth *int
	ReleaseDay   *int
}

// MetricsComplete reports whether all four engagement metrics are present.
func (t *Track) MetricsComplete() bool {
	return t.PlaybackCount != nil &&
		t.LikesCount != nil &&
		t.CommentCount != nil &&
		t.RepostsCount != nil
}

// ReleaseDate composes YYYY-MM-DD from the separate release fields. All three
// must be present and positive, otherwise the date is absent (empty string).
func (t *Track) ReleaseDate() string {
	return ComposeReleaseDate(t.ReleaseYear, t.ReleaseMonth, t.ReleaseDay)
}

// ComposeReleaseDate builds a YYYY-MM-DD string from the platform's separate
// release year/month/day fields. Any missing or non-positive component yields
// an absent date, never an error.
func ComposeReleaseDate(year, month, day *int) string {
	if year == nil || month == nil || day == nil {
		return ""
	}
	if *year <= 0 || *month <= 0 || *day <= 0 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", *year, *month, *day)
}
