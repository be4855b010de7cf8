package data

import (
	"path"
	"regexp"
	"strings"
)

// Album is a playlist the platform flags as an album. TrackURNs is the
// ordered member list, used only to build the track→album reverse lookup.
type Album struct {
	URN          string
	Title        string
	PermalinkURL string
	ArtworkURL   string
	TrackURNs    []string
}

// CoverSig returns the artwork signature for this album's cover.
func (a *Album) CoverSig() string {
	return ExtractCoverSig(a.ArtworkURL)
}

var coverSigRe = regexp.MustCompile(`artworks-([A-Za-z0-9]+)-`)

// ExtractCoverSig pulls the stable signature out of an artwork URL, so two
// URLs pointing at the same artwork in different sizes compare equal. URLs
// without the artworks-<sig>- pattern fall back to the filename stem.
func ExtractCoverSig(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	if m := coverSigRe.FindStringSubmatch(artworkURL); m != nil {
		return m[1]
	}
	base := path.Base(artworkURL)
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// AlbumMap indexes a single artist's albums by member track URN. It is built
// once per artist and never shared across artists.
type AlbumMap map[string][]Album

// BuildAlbumMap builds the track URN → containing-albums index.
func BuildAlbumMap(albums []Album) AlbumMap {
	m := AlbumMap{}
	for _, alb := range albums {
		for _, urn := range alb.TrackURNs {
			if urn == "" {
				continue
			}
			m[urn] = append(m[urn], alb)
		}
	}
	return m
}

// AlbumMembership is the flattened membership block carried on every track
// row. The string fields are pointers so "not in any album" renders as an
// absent cell rather than an empty string.
type AlbumMembership struct {
	InAlbum          bool
	AlbumURNs        *string
	AlbumTitles      *string
	AlbumArtworkURLs *string
	AlbumCoverSigs   *string
	AlbumCount       int
}

// Flatten returns the membership fields for one track.
func (m AlbumMap) Flatten(trackURN string) AlbumMembership {
	albums := m[trackURN]
	if len(albums) == 0 {
		return AlbumMembership{}
	}
	var urns, titles, arts, sigs []string
	for _, a := range albums {
		if a.URN != "" {
			urns = append(urns, a.URN)
		}
		if a.Title != "" {
			titles = append(titles, a.Title)
		}
		if a.ArtworkURL != "" {
			arts = append(arts, a.ArtworkURL)
		}
		if sig := a.CoverSig(); sig != "" {
			sigs = append(sigs, sig)
		}
	}
	return AlbumMembership{
		InAlbum:          true,
		AlbumURNs:        joined(urns),
		AlbumTitles:      joined(titles),
		AlbumArtworkURLs: joined(arts),
		AlbumCoverSigs:   joined(sigs),
		AlbumCount:       len(albums),
	}
}

func joined(parts []string) *string {
	if len(parts) == 0 {
		return nil
	}
	s := strings.Join(parts, "; ")
	return &s
}
