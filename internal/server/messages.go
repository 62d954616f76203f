package server

import "time"

type QuestProgress struct {
	QuestCode string `json:"questCode"`
	PeriodKey string `json:"periodKey"`
	Progress  int    `json:"progress"`
	GoalValue int    `json:"goalValue"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
}

type AdvanceQuestRequest struct {
	GoalTag string `json:"goalTag"`
	Amount  int    `json:"amount"`
	EventID string `json:"eventId,omitempty"`
}

type AdvanceQuestResponse struct {
	Quests    []QuestProgress `json:"quests"`
	Duplicate bool            `json:"duplicate"`
}

type QuestReward struct {
	Dust   int64  `json:"dust"`
	XP     int64  `json:"xp"`
	Ticket string `json:"ticket,omitempty"`
	Badge  string `json:"badge,omitempty"`
}

type TrackTarget struct {
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	RequiredCount int    `json:"requiredCount"`
}

type AlbumTarget struct {
	AlbumName          string `json:"albumName"`
	ArtistName         string `json:"artistName"`
	RequiredTrackCount int    `json:"requiredTrackCount"`
}

type StreamingMeta struct {
	Artists []string      `json:"artists,omitempty"`
	Tracks  []TrackTarget `json:"tracks,omitempty"`
	Albums  []AlbumTarget `json:"albums,omitempty"`
}

type UserQuest struct {
	Code      string         `json:"code"`
	Period    string         `json:"period"`
	PeriodKey string         `json:"periodKey"`
	Title     string         `json:"title"`
	GoalType  string         `json:"goalType"`
	GoalValue int            `json:"goalValue"`
	Progress  int            `json:"progress"`
	Completed bool           `json:"completed"`
	Claimed   bool           `json:"claimed"`
	Reward    QuestReward    `json:"reward"`
	Streaming *StreamingMeta `json:"streaming,omitempty"`
}

type GetUserQuestsRequest struct{}

type GetUserQuestsResponse struct {
	Quests []UserQuest `json:"quests"`
}

type ClaimQuestRequest struct {
	QuestCode string `json:"questCode"`
}

type ClaimQuestResponse struct {
	QuestCode      string    `json:"questCode"`
	PeriodKey      string    `json:"periodKey"`
	AlreadyClaimed bool      `json:"alreadyClaimed"`
	Balances       *Balances `json:"balances,omitempty"`
	Ticket         *Reward   `json:"ticket,omitempty"`
	Badge          string    `json:"badge,omitempty"`
	Streak         *Streak   `json:"streak,omitempty"`
}

type RollRewardRequest struct {
	Context   string `json:"context,omitempty"`
	MinRarity string `json:"minRarity,omitempty"`
	XPEarned  int    `json:"xpEarned,omitempty"`
	GrantKey  string `json:"grantKey,omitempty"`
}

type Reward struct {
	AuditID       string         `json:"auditId"`
	Rarity        string         `json:"rarity"`
	ItemID        string         `json:"itemId,omitempty"`
	ItemName      string         `json:"itemName,omitempty"`
	Consolation   int64          `json:"consolation,omitempty"`
	Forced        string         `json:"forced,omitempty"`
	Weights       map[string]int `json:"weights"`
	PoolID        string         `json:"poolId,omitempty"`
	Anomaly       bool           `json:"anomaly,omitempty"`
	AnomalyReason string         `json:"anomalyReason,omitempty"`
	Replayed      bool           `json:"replayed,omitempty"`
}

type AwardBalancesRequest struct {
	Dust             int64     `json:"dust"`
	XP               int64     `json:"xp"`
	TrackLeaderboard bool      `json:"trackLeaderboard"`
	PlayedAt         time.Time `json:"playedAt,omitzero"`
}

type Balances struct {
	Dust         int64 `json:"dust"`
	XP           int64 `json:"xp"`
	Level        int   `json:"level"`
	IntoLevel    int64 `json:"intoLevel"`
	ForNextLevel int64 `json:"forNextLevel"`
}

type CompletePeriodRequest struct{}

type Streak struct {
	Kind       string   `json:"kind"`
	PeriodKey  string   `json:"periodKey"`
	Transition string   `json:"transition"`
	Count      int      `json:"count"`
	Highest    int      `json:"highest"`
	Badges     []string `json:"badges,omitempty"`
	Bonus      *Reward  `json:"bonus,omitempty"`
	Ignored    bool     `json:"ignored,omitempty"`
}

type VerifyStreamingQuestRequest struct {
	ExternalUsername string `json:"externalUsername,omitempty"`
	QuestCode        string `json:"questCode,omitempty"`
	PeriodKey        string `json:"periodKey,omitempty"`
}

type Verification struct {
	QuestCode string    `json:"questCode"`
	PeriodKey string    `json:"periodKey"`
	Progress  int       `json:"progress"`
	GoalValue int       `json:"goalValue"`
	Completed bool      `json:"completed"`
	Counted   int       `json:"counted"`
	Baseline  time.Time `json:"baseline"`
	Degraded  bool      `json:"degraded"`
}

type VerifyStreamingQuestResponse struct {
	Results []Verification `json:"results"`
}

type GetGameStateRequest struct{}

type Pity struct {
	SinceEpic      int `json:"sinceEpic"`
	SinceLegendary int `json:"sinceLegendary"`
}

type StreakState struct {
	Count      int    `json:"count"`
	Highest    int    `json:"highest"`
	LastKey    string `json:"lastKey,omitempty"`
	Milestones int    `json:"milestones"`
}

type UserBadge struct {
	Code       string    `json:"code"`
	Family     string    `json:"family"`
	Occurrence string    `json:"occurrence"`
	EarnedAt   time.Time `json:"earnedAt"`
}

type InventoryItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type Rank struct {
	Period    string `json:"period"`
	PeriodKey string `json:"periodKey"`
	Rank      int    `json:"rank"`
	Score     int64  `json:"score"`
}

type GetGameStateResponse struct {
	UserID    string          `json:"userId"`
	Balances  Balances        `json:"balances"`
	Pity      Pity            `json:"pity"`
	Daily     StreakState     `json:"daily"`
	Weekly    StreakState     `json:"weekly"`
	Badges    []UserBadge     `json:"badges"`
	Inventory []InventoryItem `json:"inventory"`
	Ranks     []Rank          `json:"ranks"`
}

type GetLeaderboardRequest struct {
	Period string    `json:"period"`
	At     time.Time `json:"at,omitzero"`
	Limit  int       `json:"limit,omitempty"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Score       int64  `json:"score"`
}

type GetLeaderboardResponse struct {
	Period    string             `json:"period"`
	PeriodKey string             `json:"periodKey"`
	Entries   []LeaderboardEntry `json:"entries"`
}
