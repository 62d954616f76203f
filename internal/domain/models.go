package domain

import (
	"progression-engine/internal/droptable"
	"progression-engine/internal/period"
	"strings"
	"time"
)

type QuestDefinition struct {
	Code      string
	Period    period.Kind
	PeriodKey string
	Position  int
	Title     string
	GoalType  string // "quiz", "listen:track", ...
	GoalValue int
	Streaming *StreamingMeta
	Reward    QuestReward
	CreatedAt time.Time
}

// Matches reports whether an event tag counts toward this quest: an exact
// match, or the goal type followed by a ':' or '.' separator.
func (d QuestDefinition) Matches(tag string) bool {
	if d.GoalType == "" || tag == "" {
		return false
	}
	if tag == d.GoalType {
		return true
	}
	return strings.HasPrefix(tag, d.GoalType+":") || strings.HasPrefix(tag, d.GoalType+".")
}

type StreamingMeta struct {
	Artists []string      `json:"artists,omitempty"`
	Tracks  []TrackTarget `json:"tracks,omitempty"`
	Albums  []AlbumTarget `json:"albums,omitempty"`
}

type TrackTarget struct {
	TrackName     string `json:"track_name"`
	ArtistName    string `json:"artist_name"`
	RequiredCount int    `json:"required_count"`
}

type AlbumTarget struct {
	AlbumName          string `json:"album_name"`
	ArtistName         string `json:"artist_name"`
	RequiredTrackCount int    `json:"required_track_count"`
}

type QuestReward struct {
	Dust int64
	XP   int64
	// Ticket is a minimum rarity for a bonus roll; Common means none.
	Ticket droptable.Rarity
	Badge  string
}

type QuestProgress struct {
	UserID     string
	QuestCode  string
	PeriodKey  string
	Progress   int
	GoalValue  int
	Completed  bool
	Claimed    bool
	ClaimedAt  *time.Time
	BaselineAt *time.Time
	UpdatedAt  time.Time
}

type UserQuest struct {
	Definition QuestDefinition
	Progress   QuestProgress
}

type GameState struct {
	UserID    string
	Dust      int64
	XP        int64
	Level     int
	Pity      droptable.Pity
	Daily     StreakState
	Weekly    StreakState
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *GameState) Streak(kind period.Kind) *StreakState {
	if kind == period.Weekly {
		return &g.Weekly
	}
	return &g.Daily
}

type Badge struct {
	Code   string
	Name   string
	Rarity droptable.Rarity
	Active bool
}

// BadgeGrant identifies one award. Uniqueness is (UserID, Family, Occurrence):
// one-time badges use a fixed occurrence, cyclic badges use the period key
// they were earned in.
type BadgeGrant struct {
	UserID        string
	Code          string
	Family        string
	CyclePosition int
	Occurrence    string
	Metadata      map[string]any
}

const OnceOccurrence = "once"

type UserBadge struct {
	ID string
	BadgeGrant
	EarnedAt time.Time
}

type LeaderboardEntry struct {
	PeriodType   period.Kind
	PeriodKey    string
	UserID       string
	DisplayName  string
	AvatarURL    string
	Score        int64
	Rank         int
	PeriodStart  time.Time
	PeriodEnd    time.Time
	LastPlayedAt time.Time
}

type Profile struct {
	UserID            string
	DisplayName       string
	AvatarURL         string
	ListeningUsername string
}

type InventoryItem struct {
	UserID    string
	ItemID    string
	Quantity  int
	UpdatedAt time.Time
}

type GrantAudit struct {
	ID            string
	UserID        string
	GrantKey      string
	Context       string
	Rarity        droptable.Rarity
	Weights       droptable.Weights
	Seed          uint64
	Forced        droptable.ForceReason
	ItemID        string
	Consolation   int64
	Anomaly       bool
	AnomalyReason string
	CreatedAt     time.Time
}

// Play is one scrobble reported by the listening provider.
type Play struct {
	TrackName  string
	ArtistName string
	AlbumName  string
	PlayedAt   time.Time
}
