package listening

import "progression-engine/internal/domain"

// Tally is the verified progress of one streaming quest.
type Tally struct {
	// Tracks[i] counts plays of meta.Tracks[i], capped at its requirement.
	Tracks []int
	// Albums[i] counts distinct tracks of meta.Albums[i], capped likewise.
	Albums []int
	Total  int
}

// Count matches plays against the quest's targets. Plays by artists outside
// the quest's scope are ignored; the scope is meta.Artists plus every
// target's artist.
func Count(plays []domain.Play, meta domain.StreamingMeta) Tally {
	scope := artistScope(meta)

	type play struct{ track, artist, album string }
	inScope := make([]play, 0, len(plays))
	for _, p := range plays {
		artist := Normalize(p.ArtistName)
		if len(scope) > 0 && !inArtistScope(artist, scope) {
			continue
		}
		inScope = append(inScope, play{
			track:  Normalize(p.TrackName),
			artist: artist,
			album:  Normalize(p.AlbumName),
		})
	}

	tally := Tally{
		Tracks: make([]int, len(meta.Tracks)),
		Albums: make([]int, len(meta.Albums)),
	}

	for i, target := range meta.Tracks {
		name, artist := Normalize(target.TrackName), Normalize(target.ArtistName)
		n := 0
		for _, p := range inScope {
			if artist != "" && !matchNormalized(p.artist, artist) {
				continue
			}
			if matchNormalized(p.track, name) {
				n++
			}
		}
		tally.Tracks[i] = min(n, target.RequiredCount)
		tally.Total += tally.Tracks[i]
	}

	for i, target := range meta.Albums {
		name, artist := Normalize(target.AlbumName), Normalize(target.ArtistName)
		distinct := make(map[string]struct{})
		for _, p := range inScope {
			if artist != "" && !matchNormalized(p.artist, artist) {
				continue
			}
			if p.track != "" && matchNormalized(p.album, name) {
				distinct[p.track] = struct{}{}
			}
		}
		tally.Albums[i] = min(len(distinct), target.RequiredTrackCount)
		tally.Total += tally.Albums[i]
	}

	return tally
}

func artistScope(meta domain.StreamingMeta) []string {
	seen := make(map[string]bool)
	var scope []string
	add := func(name string) {
		n := Normalize(name)
		if n != "" && !seen[n] {
			seen[n] = true
			scope = append(scope, n)
		}
	}
	for _, a := range meta.Artists {
		add(a)
	}
	for _, t := range meta.Tracks {
		add(t.ArtistName)
	}
	for _, a := range meta.Albums {
		add(a.ArtistName)
	}
	return scope
}

func inArtistScope(artist string, scope []string) bool {
	for _, s := range scope {
		if matchNormalized(artist, s) {
			return true
		}
	}
	return false
}
