package data

// ArtistRow is the per-artist summary line on the artists sheet.
type ArtistRow struct {
	ArtistURN       string
	ArtistInputName string
	ArtistUsername  string
	Followers       *int64
	TrackCountTotal *int64
}

// AlbumRow is one album on the albums sheet.
type AlbumRow struct {
	ArtistURN         string
	ArtistUsername    string
	AlbumURN          string
	AlbumTitle        string
	AlbumPermalinkURL string
	AlbumArtworkURL   string
	AlbumCoverSig     string
	AlbumTrackCount   int
}

// TrackRow is one hydrated track on the tracks sheet, with the flattened
// album membership block joined on.
type TrackRow struct {
	ArtistURN       string
	ArtistUsername  string
	Followers       *int64
	TrackCountTotal *int64

	TrackURN      string
	TrackTitle    string
	PermalinkURL  string
	ArtworkURL    string
	TrackCoverSig string

	PlaybackCount *int64
	LikesCount    *int64
	CommentCount  *int64
	RepostsCount  *int64

	Access     string
	Streamable bool

	CreatedAt    string
	ReleaseDate  string
	ReleaseYear  *int
	ReleaseMonth *int
	ReleaseDay   *int

	AlbumMembership
}

// ErrorRecord is appended once for every artist that still fails after the
// retry pass, and never mutated afterward.
type ErrorRecord struct {
	Timestamp  string
	ArtistURN  string
	InputName  string
	Step       string
	HTTPStatus *int
	Message    string
}

// RunSummary is the single meta row, computed once when the run finishes.
type RunSummary struct {
	SnapshotDate  string
	Timestamp     string
	RunSeconds    float64
	ArtistsIn     int
	ArtistsOK     int
	ArtistsFailed int
	TracksTotal   int
	AlbumsTotal   int
	ErrorsTotal   int
}
