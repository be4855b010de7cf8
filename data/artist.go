package data

import "strings"

// ArtistRef identifies one artist to collect: the platform URN plus the
// optional label the operator gave them in the input sheet.
type ArtistRef struct {
	URN       string
	InputName string
}

// NormalizeURN converts a bare numeric user id into canonical
// soundcloud:users:<id> form. Anything that isn't all digits passes through
// unchanged.
func NormalizeURN(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	return "soundcloud:users:" + id
}

// DedupeRefs removes duplicate artist refs by URN, keeping the first
// occurrence of each and the original order.
func DedupeRefs(refs []ArtistRef) []ArtistRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]ArtistRef, 0, len(refs))
	for _, ref := range refs {
		if ref.URN == "" {
			continue
		}
		if _, ok := seen[ref.URN]; ok {
			continue
		}
		seen[ref.URN] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// Profile holds the resolved user attributes we report per artist. Followers
// and TrackCount are pointers because the API sometimes returns them null;
// the collector refetches once when either is missing.
type Profile struct {
	Username   string
	Followers  *int64
	TrackCount *int64
}

// Merge fills nil fields of p from other, without overwriting anything p
// already has. Used for the one-shot profile refetch.
func (p *Profile) Merge(other Profile) {
	if p.Username == "" {
		p.Username = other.Username
	}
	if p.Followers == nil {
		p.Followers = other.Followers
	}
	if p.TrackCount == nil {
		p.TrackCount = other.TrackCount
	}
}
