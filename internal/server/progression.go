package server

import (
	"context"
	"errors"
	"net/http"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"progression-engine/internal/middleware"
	"progression-engine/internal/period"
	"progression-engine/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const ServiceName = "progression.v1.ProgressionService"

// ServicePath is the URL prefix every procedure is mounted under.
const ServicePath = "/" + ServiceName + "/"

const (
	AdvanceQuestProcedure         = ServicePath + "AdvanceQuest"
	GetUserQuestsProcedure        = ServicePath + "GetUserQuests"
	ClaimQuestProcedure           = ServicePath + "ClaimQuest"
	RollRewardProcedure           = ServicePath + "RollReward"
	AwardBalancesProcedure        = ServicePath + "AwardBalances"
	CompleteDailyPeriodProcedure  = ServicePath + "CompleteDailyPeriod"
	CompleteWeeklyPeriodProcedure = ServicePath + "CompleteWeeklyPeriod"
	VerifyStreamingQuestProcedure = ServicePath + "VerifyStreamingQuest"
	GetGameStateProcedure         = ServicePath + "GetGameState"
	GetLeaderboardProcedure       = ServicePath + "GetLeaderboard"
)

type ProgressionServer struct {
	questSvc  *service.QuestService
	rewardSvc *service.RewardService
	ledgerSvc *service.LedgerService
	streakSvc *service.StreakService
	verifySvc *service.VerificationService
	logger    zerolog.Logger
}

func NewProgressionServer(
	questSvc *service.QuestService,
	rewardSvc *service.RewardService,
	ledgerSvc *service.LedgerService,
	streakSvc *service.StreakService,
	verifySvc *service.VerificationService,
	logger zerolog.Logger,
) *ProgressionServer {
	return &ProgressionServer{
		questSvc:  questSvc,
		rewardSvc: rewardSvc,
		ledgerSvc: ledgerSvc,
		streakSvc: streakSvc,
		verifySvc: verifySvc,
		logger:    logger,
	}
}

// NewHandler mounts every procedure of the service and returns the path
// prefix to route to it.
func NewHandler(s *ProgressionServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AdvanceQuestProcedure, connect.NewUnaryHandler(AdvanceQuestProcedure, s.AdvanceQuest, opts...))
	mux.Handle(GetUserQuestsProcedure, connect.NewUnaryHandler(GetUserQuestsProcedure, s.GetUserQuests, opts...))
	mux.Handle(ClaimQuestProcedure, connect.NewUnaryHandler(ClaimQuestProcedure, s.ClaimQuest, opts...))
	mux.Handle(RollRewardProcedure, connect.NewUnaryHandler(RollRewardProcedure, s.RollReward, opts...))
	mux.Handle(AwardBalancesProcedure, connect.NewUnaryHandler(AwardBalancesProcedure, s.AwardBalances, opts...))
	mux.Handle(CompleteDailyPeriodProcedure, connect.NewUnaryHandler(CompleteDailyPeriodProcedure, s.CompleteDailyPeriod, opts...))
	mux.Handle(CompleteWeeklyPeriodProcedure, connect.NewUnaryHandler(CompleteWeeklyPeriodProcedure, s.CompleteWeeklyPeriod, opts...))
	mux.Handle(VerifyStreamingQuestProcedure, connect.NewUnaryHandler(VerifyStreamingQuestProcedure, s.VerifyStreamingQuest, opts...))
	mux.Handle(GetGameStateProcedure, connect.NewUnaryHandler(GetGameStateProcedure, s.GetGameState, opts...))
	mux.Handle(GetLeaderboardProcedure, connect.NewUnaryHandler(GetLeaderboardProcedure, s.GetLeaderboard, opts...))
	return ServicePath, mux
}

func (s *ProgressionServer) AdvanceQuest(ctx context.Context, req *connect.Request[AdvanceQuestRequest]) (*connect.Response[AdvanceQuestResponse], error) {
	result, err := s.questSvc.Advance(ctx, service.AdvanceInput{
		UserID:  middleware.GetUserID(ctx),
		GoalTag: req.Msg.GoalTag,
		Amount:  req.Msg.Amount,
		EventID: req.Msg.EventID,
	})
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := &AdvanceQuestResponse{Quests: make([]QuestProgress, 0, len(result.Updated)), Duplicate: result.Duplicate}
	for _, p := range result.Updated {
		resp.Quests = append(resp.Quests, toQuestProgress(p))
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressionServer) GetUserQuests(ctx context.Context, req *connect.Request[GetUserQuestsRequest]) (*connect.Response[GetUserQuestsResponse], error) {
	quests, err := s.questSvc.ListForUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := &GetUserQuestsResponse{Quests: make([]UserQuest, 0, len(quests))}
	for _, q := range quests {
		resp.Quests = append(resp.Quests, toUserQuest(q))
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressionServer) ClaimQuest(ctx context.Context, req *connect.Request[ClaimQuestRequest]) (*connect.Response[ClaimQuestResponse], error) {
	result, err := s.questSvc.Claim(ctx, middleware.GetUserID(ctx), req.Msg.QuestCode)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := &ClaimQuestResponse{
		QuestCode:      result.Quest.Code,
		PeriodKey:      result.Quest.PeriodKey,
		AlreadyClaimed: result.AlreadyClaimed,
		Badge:          result.Badge,
	}
	if result.Balances != nil {
		b := toBalances(*result.Balances)
		resp.Balances = &b
	}
	if result.Ticket != nil {
		r := toReward(*result.Ticket)
		resp.Ticket = &r
	}
	if result.Streak != nil {
		st := toStreak(*result.Streak)
		resp.Streak = &st
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressionServer) RollReward(ctx context.Context, req *connect.Request[RollRewardRequest]) (*connect.Response[Reward], error) {
	var minRarity droptable.Rarity
	if err := minRarity.UnmarshalText([]byte(req.Msg.MinRarity)); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := s.rewardSvc.Roll(ctx, service.RollInput{
		UserID:    middleware.GetUserID(ctx),
		Context:   req.Msg.Context,
		MinRarity: minRarity,
		XPEarned:  req.Msg.XPEarned,
		GrantKey:  req.Msg.GrantKey,
	})
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := toReward(result)
	return connect.NewResponse(&resp), nil
}

func (s *ProgressionServer) AwardBalances(ctx context.Context, req *connect.Request[AwardBalancesRequest]) (*connect.Response[Balances], error) {
	balances, err := s.ledgerSvc.Award(ctx, middleware.GetUserID(ctx),
		service.Delta{Dust: req.Msg.Dust, XP: req.Msg.XP},
		service.AwardOptions{TrackLeaderboard: req.Msg.TrackLeaderboard, PlayedAt: req.Msg.PlayedAt},
	)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := toBalances(balances)
	return connect.NewResponse(&resp), nil
}

func (s *ProgressionServer) CompleteDailyPeriod(ctx context.Context, req *connect.Request[CompletePeriodRequest]) (*connect.Response[Streak], error) {
	return s.completePeriod(ctx, period.Daily)
}

func (s *ProgressionServer) CompleteWeeklyPeriod(ctx context.Context, req *connect.Request[CompletePeriodRequest]) (*connect.Response[Streak], error) {
	return s.completePeriod(ctx, period.Weekly)
}

func (s *ProgressionServer) completePeriod(ctx context.Context, kind period.Kind) (*connect.Response[Streak], error) {
	result, err := s.streakSvc.CompletePeriod(ctx, middleware.GetUserID(ctx), kind)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := toStreak(result)
	return connect.NewResponse(&resp), nil
}

func (s *ProgressionServer) VerifyStreamingQuest(ctx context.Context, req *connect.Request[VerifyStreamingQuestRequest]) (*connect.Response[VerifyStreamingQuestResponse], error) {
	results, err := s.verifySvc.Verify(ctx, service.VerifyInput{
		UserID:           middleware.GetUserID(ctx),
		ExternalUsername: req.Msg.ExternalUsername,
		QuestCode:        req.Msg.QuestCode,
		PeriodKey:        req.Msg.PeriodKey,
	})
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := &VerifyStreamingQuestResponse{Results: make([]Verification, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, Verification{
			QuestCode: r.QuestCode,
			PeriodKey: r.PeriodKey,
			Progress:  r.Progress,
			GoalValue: r.GoalValue,
			Completed: r.Completed,
			Counted:   r.Counted,
			Baseline:  r.Baseline,
			Degraded:  r.Degraded,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressionServer) GetGameState(ctx context.Context, req *connect.Request[GetGameStateRequest]) (*connect.Response[GetGameStateResponse], error) {
	view, err := s.ledgerSvc.GetState(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	st := view.State
	resp := &GetGameStateResponse{
		UserID: st.UserID,
		Balances: Balances{
			Dust:         st.Dust,
			XP:           st.XP,
			Level:        view.Progress.Level,
			IntoLevel:    view.Progress.IntoLevel,
			ForNextLevel: view.Progress.ForNext,
		},
		Pity:      Pity{SinceEpic: st.Pity.SinceEpic, SinceLegendary: st.Pity.SinceLegendary},
		Daily:     toStreakState(st.Daily),
		Weekly:    toStreakState(st.Weekly),
		Badges:    make([]UserBadge, 0, len(view.Badges)),
		Inventory: make([]InventoryItem, 0, len(view.Inventory)),
		Ranks:     make([]Rank, 0, len(view.Ranks)),
	}
	for _, b := range view.Badges {
		resp.Badges = append(resp.Badges, UserBadge{Code: b.Code, Family: b.Family, Occurrence: b.Occurrence, EarnedAt: b.EarnedAt})
	}
	for _, item := range view.Inventory {
		resp.Inventory = append(resp.Inventory, InventoryItem{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	for _, kind := range []period.Kind{period.Daily, period.Weekly, period.AllTime} {
		if entry, ok := view.Ranks[kind]; ok {
			resp.Ranks = append(resp.Ranks, Rank{Period: string(kind), PeriodKey: entry.PeriodKey, Rank: entry.Rank, Score: entry.Score})
		}
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressionServer) GetLeaderboard(ctx context.Context, req *connect.Request[GetLeaderboardRequest]) (*connect.Response[GetLeaderboardResponse], error) {
	kind := period.AllTime
	if req.Msg.Period != "" {
		parsed, err := period.ParseKind(req.Msg.Period)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		kind = parsed
	}

	entries, err := s.ledgerSvc.Leaderboard(ctx, kind, req.Msg.At, req.Msg.Limit)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}

	resp := &GetLeaderboardResponse{Period: string(kind), Entries: make([]LeaderboardEntry, 0, len(entries))}
	for _, e := range entries {
		resp.PeriodKey = e.PeriodKey
		resp.Entries = append(resp.Entries, LeaderboardEntry{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			AvatarURL:   e.AvatarURL,
			Score:       e.Score,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressionServer) toConnectError(ctx context.Context, err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, domain.ErrInvalidUser):
		code = connect.CodeUnauthenticated
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrNotStreamingQuest):
		code = connect.CodeInvalidArgument
	case errors.Is(err, domain.ErrQuestNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, domain.ErrNotCompleted), errors.Is(err, domain.ErrPeriodIncomplete):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, domain.ErrVersionConflict):
		code = connect.CodeAborted
	case errors.Is(err, domain.ErrExternalProviderTimeout):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}
	if code == connect.CodeInternal {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("code", code.String()).Msg("request rejected")
	}
	return connect.NewError(code, err)
}
