package catalog

import (
	"hash/fnv"
	"math/rand/v2"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
)

// seededRand derives a generator from the period key alone, so every caller
// reproduces the same selection for the same period.
func seededRand(key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(key))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x6a09e667f3bcc909))
}

// Generate builds the quest definitions of one period. Templates and
// streaming targets are chosen with a Fisher-Yates shuffle driven by the key.
func (c *Catalog) Generate(kind period.Kind, key string) []domain.QuestDefinition {
	rng := seededRand(key)

	var templates []QuestTemplate
	for _, tpl := range c.Templates {
		if tpl.Period == kind {
			templates = append(templates, tpl)
		}
	}
	rng.Shuffle(len(templates), func(i, j int) {
		templates[i], templates[j] = templates[j], templates[i]
	})

	n := c.Quests.DailyCount
	if kind == period.Weekly {
		n = c.Quests.WeeklyCount
	}
	n = min(n, len(templates))

	defs := make([]domain.QuestDefinition, 0, n)
	for i, tpl := range templates[:n] {
		def := domain.QuestDefinition{
			Code:      tpl.Code,
			Period:    kind,
			PeriodKey: key,
			Position:  i,
			Title:     tpl.Title,
			GoalType:  tpl.GoalType,
			Reward: domain.QuestReward{
				Dust:   tpl.RewardDust,
				XP:     tpl.RewardXP,
				Ticket: tpl.Ticket,
				Badge:  tpl.Badge,
			},
		}

		switch tpl.TargetKind {
		case "track":
			def.Streaming, def.GoalValue = c.sampleTracks(rng, tpl)
		case "album":
			def.Streaming, def.GoalValue = c.sampleAlbums(rng, tpl)
		default:
			def.GoalValue = tpl.GoalMin
			if tpl.GoalMax > tpl.GoalMin {
				def.GoalValue += rng.IntN(tpl.GoalMax - tpl.GoalMin + 1)
			}
		}

		// A streaming template with an empty target pool falls back to its
		// configured minimum so the quest stays completable.
		if def.GoalValue <= 0 {
			def.GoalValue = max(tpl.GoalMin, 1)
		}
		defs = append(defs, def)
	}
	return defs
}

func (c *Catalog) sampleTracks(rng *rand.Rand, tpl QuestTemplate) (*domain.StreamingMeta, int) {
	order := rng.Perm(len(c.Tracks))
	meta := &domain.StreamingMeta{}
	goal := 0
	for _, idx := range order[:min(tpl.Targets, len(order))] {
		track := c.Tracks[idx]
		meta.Tracks = append(meta.Tracks, domain.TrackTarget{
			TrackName:     track.Name,
			ArtistName:    track.Artist,
			RequiredCount: tpl.PerTarget,
		})
		meta.Artists = appendArtist(meta.Artists, track.Artist)
		goal += tpl.PerTarget
	}
	return meta, goal
}

func (c *Catalog) sampleAlbums(rng *rand.Rand, tpl QuestTemplate) (*domain.StreamingMeta, int) {
	order := rng.Perm(len(c.Albums))
	meta := &domain.StreamingMeta{}
	goal := 0
	for _, idx := range order[:min(tpl.Targets, len(order))] {
		album := c.Albums[idx]
		required := tpl.PerTarget
		if album.TrackCount > 0 {
			required = min(required, album.TrackCount)
		}
		meta.Albums = append(meta.Albums, domain.AlbumTarget{
			AlbumName:          album.Name,
			ArtistName:         album.Artist,
			RequiredTrackCount: required,
		})
		meta.Artists = appendArtist(meta.Artists, album.Artist)
		goal += required
	}
	return meta, goal
}

func appendArtist(artists []string, artist string) []string {
	if artist == "" {
		return artists
	}
	for _, a := range artists {
		if a == artist {
			return artists
		}
	}
	return append(artists, artist)
}
