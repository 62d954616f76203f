package server

import (
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"progression-engine/internal/service"
)

func toQuestProgress(p domain.QuestProgress) QuestProgress {
	return QuestProgress{
		QuestCode: p.QuestCode,
		PeriodKey: p.PeriodKey,
		Progress:  p.Progress,
		GoalValue: p.GoalValue,
		Completed: p.Completed,
		Claimed:   p.Claimed,
	}
}

func toUserQuest(q domain.UserQuest) UserQuest {
	def := q.Definition
	out := UserQuest{
		Code:      def.Code,
		Period:    string(def.Period),
		PeriodKey: def.PeriodKey,
		Title:     def.Title,
		GoalType:  def.GoalType,
		GoalValue: def.GoalValue,
		Progress:  q.Progress.Progress,
		Completed: q.Progress.Completed,
		Claimed:   q.Progress.Claimed,
		Reward: QuestReward{
			Dust:  def.Reward.Dust,
			XP:    def.Reward.XP,
			Badge: def.Reward.Badge,
		},
	}
	if def.Reward.Ticket > droptable.Common {
		out.Reward.Ticket = def.Reward.Ticket.String()
	}

	if m := def.Streaming; m != nil {
		meta := &StreamingMeta{Artists: m.Artists}
		for _, t := range m.Tracks {
			meta.Tracks = append(meta.Tracks, TrackTarget{TrackName: t.TrackName, ArtistName: t.ArtistName, RequiredCount: t.RequiredCount})
		}
		for _, a := range m.Albums {
			meta.Albums = append(meta.Albums, AlbumTarget{AlbumName: a.AlbumName, ArtistName: a.ArtistName, RequiredTrackCount: a.RequiredTrackCount})
		}
		out.Streaming = meta
	}
	return out
}

func toReward(r service.RollResult) Reward {
	return Reward{
		AuditID:       r.AuditID,
		Rarity:        r.Rarity.String(),
		ItemID:        r.ItemID,
		ItemName:      r.ItemName,
		Consolation:   r.Consolation,
		Forced:        string(r.Forced),
		Weights:       r.Weights.Map(),
		PoolID:        r.PoolID,
		Anomaly:       r.Anomaly,
		AnomalyReason: r.AnomalyReason,
		Replayed:      r.Replayed,
	}
}

func toBalances(b service.Balances) Balances {
	return Balances{
		Dust:         b.Dust,
		XP:           b.XP,
		Level:        b.Level,
		IntoLevel:    b.Progress.IntoLevel,
		ForNextLevel: b.Progress.ForNext,
	}
}

func toStreak(r service.StreakResult) Streak {
	out := Streak{
		Kind:       string(r.Kind),
		PeriodKey:  r.PeriodKey,
		Transition: r.Transition.String(),
		Count:      r.Count,
		Highest:    r.Highest,
		Badges:     r.Badges,
		Ignored:    r.Ignored,
	}
	if r.Bonus != nil {
		bonus := toReward(*r.Bonus)
		out.Bonus = &bonus
	}
	return out
}

func toStreakState(s domain.StreakState) StreakState {
	return StreakState{
		Count:      s.Count,
		Highest:    s.Highest,
		LastKey:    s.LastKey,
		Milestones: s.Milestones,
	}
}
