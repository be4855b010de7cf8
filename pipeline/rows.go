package pipeline

import "github.com/shamsmusic/scpulse/data"

func (col *Collection) artistRow() data.ArtistRow {
	return data.ArtistRow{
		ArtistURN:       col.Ref.URN,
		ArtistInputName: col.Ref.InputName,
		ArtistUsername:  col.Profile.Username,
		Followers:       col.Profile.Followers,
		TrackCountTotal: col.Profile.TrackCount,
	}
}

func (col *Collection) albumRows() []data.AlbumRow {
	rows := make([]data.AlbumRow, 0, len(col.Albums))
	for _, alb := range col.Albums {
		rows = append(rows, data.AlbumRow{
			ArtistURN:         col.Ref.URN,
			ArtistUsername:    col.Profile.Username,
			AlbumURN:          alb.URN,
			AlbumTitle:        alb.Title,
			AlbumPermalinkURL: alb.PermalinkURL,
			AlbumArtworkURL:   alb.ArtworkURL,
			AlbumCoverSig:     alb.CoverSig(),
			AlbumTrackCount:   len(alb.TrackURNs),
		})
	}
	return rows
}

func (col *Collection) trackRows() []data.TrackRow {
	rows := make([]data.TrackRow, 0, len(col.Tracks))
	for _, tr := range col.Tracks {
		rows = append(rows, data.TrackRow{
			ArtistURN:       col.Ref.URN,
			ArtistUsername:  col.Profile.Username,
			Followers:       col.Profile.Followers,
			TrackCountTotal: col.Profile.TrackCount,

			TrackURN:      tr.URN,
			TrackTitle:    tr.Title,
			PermalinkURL:  tr.PermalinkURL,
			ArtworkURL:    tr.ArtworkURL,
			TrackCoverSig: data.ExtractCoverSig(tr.ArtworkURL),

			PlaybackCount: tr.PlaybackCount,
			LikesCount:    tr.LikesCount,
			CommentCount:  tr.CommentCount,
			RepostsCount:  tr.RepostsCount,

			Access:     tr.Access,
			Streamable: tr.Streamable,

			CreatedAt:    tr.CreatedAt,
			ReleaseDate:  tr.ReleaseDate(),
			ReleaseYear:  tr.ReleaseYear,
			ReleaseMonth: tr.ReleaseMonth,
			ReleaseDay:   tr.ReleaseDay,

			AlbumMembership: col.AlbumMap.Flatten(tr.URN),
		})
	}
	return rows
}
