package service

import (
	"context"
	"errors"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
	"sync"
	"testing"
	"time"
)

// parallel runs fn n times concurrently and returns the errors in call order.
func parallel(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(i)
		}()
	}
	wg.Wait()
	return errs
}

func TestConcurrentAdvanceAndClaimPayOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, err := range parallel(25, func(int) error {
		_, err := env.questSvc.Advance(ctx, AdvanceInput{UserID: "u1", GoalTag: "quiz", Amount: 1})
		return err
	}) {
		if err != nil {
			t.Fatalf("Advance #%d error = %v", i, err)
		}
	}

	quests, err := env.questSvc.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	for _, q := range quests {
		if q.Definition.Code == "quiz" && (q.Progress.Progress != 25 || !q.Progress.Completed) {
			t.Fatalf("quiz progress = %+v, want 25 completed", q.Progress)
		}
	}

	var mu sync.Mutex
	paid := 0
	for i, err := range parallel(10, func(int) error {
		res, err := env.questSvc.Claim(ctx, "u1", "quiz")
		if err == nil && !res.AlreadyClaimed {
			mu.Lock()
			paid++
			mu.Unlock()
		}
		return err
	}) {
		if err != nil {
			t.Fatalf("Claim #%d error = %v", i, err)
		}
	}

	if paid != 1 {
		t.Errorf("%d claims paid out, want 1", paid)
	}
	if state := env.loadState(t, "u1"); state.Dust != 10 || state.XP != 100 {
		t.Errorf("balances = %d dust %d xp, want 10 and 100", state.Dust, state.XP)
	}
}

func TestConcurrentTicketClaimsRollOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.questSvc.Advance(ctx, AdvanceInput{UserID: "u1", GoalTag: "share", Amount: 1}); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	results := make([]ClaimResult, 8)
	for i, err := range parallel(len(results), func(i int) error {
		var err error
		results[i], err = env.questSvc.Claim(ctx, "u1", "share")
		return err
	}) {
		if err != nil {
			t.Fatalf("Claim #%d error = %v", i, err)
		}
	}

	fresh := 0
	for _, res := range results {
		if res.Ticket == nil {
			t.Fatalf("Claim result %+v has no ticket", res)
		}
		if !res.Ticket.Replayed {
			fresh++
		}
		if res.Ticket.AuditID != results[0].Ticket.AuditID {
			t.Errorf("ticket audit %s, want %s for every claim", res.Ticket.AuditID, results[0].Ticket.AuditID)
		}
	}
	if fresh != 1 {
		t.Errorf("%d fresh ticket rolls, want 1", fresh)
	}

	state := env.loadState(t, "u1")
	if state.Dust != 15 || state.Pity.SinceEpic != 1 {
		t.Errorf("state dust = %d sinceEpic = %d, want 15 and 1", state.Dust, state.Pity.SinceEpic)
	}
}

func TestConcurrentCompletionAdvancesStreakOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.completeDay(t, "u1")

	// Day two: everything but the last claim, which races the completions.
	env.clock.now = testNow.Add(24 * time.Hour)
	for _, adv := range []AdvanceInput{
		{UserID: "u1", GoalTag: "quiz", Amount: 25},
		{UserID: "u1", GoalTag: "share", Amount: 1},
	} {
		if _, err := env.questSvc.Advance(ctx, adv); err != nil {
			t.Fatalf("Advance(%s) error = %v", adv.GoalTag, err)
		}
	}
	if _, err := env.questSvc.Claim(ctx, "u1", "quiz"); err != nil {
		t.Fatalf("Claim(quiz) error = %v", err)
	}

	var mu sync.Mutex
	extended := 0
	record := func(st *StreakResult) {
		if st != nil && st.Transition == domain.TransitionExtended {
			mu.Lock()
			extended++
			mu.Unlock()
		}
	}

	for i, err := range parallel(12, func(i int) error {
		if i%2 == 0 {
			res, err := env.questSvc.Claim(ctx, "u1", "share")
			record(res.Streak)
			return err
		}
		res, err := env.streaks.CompletePeriod(ctx, "u1", period.Daily)
		if errors.Is(err, domain.ErrPeriodIncomplete) {
			return nil
		}
		record(&res)
		return err
	}) {
		if err != nil {
			t.Fatalf("call #%d error = %v", i, err)
		}
	}

	if extended != 1 {
		t.Errorf("%d extended transitions, want 1", extended)
	}
	if state := env.loadState(t, "u1"); state.Daily.Count != 2 {
		t.Errorf("Daily.Count = %d, want 2", state.Daily.Count)
	}

	badges, err := env.badges.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	completions := 0
	for _, b := range badges {
		if b.Code == "daily_completion_2" {
			completions++
		}
	}
	if completions != 1 {
		t.Errorf("daily_completion_2 granted %d times, want 1", completions)
	}
}

func TestPeriodGeneratorSurvivesCancelledCaller(t *testing.T) {
	env := newTestEnv(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	defs := make([][]domain.QuestDefinition, 16)
	errs := parallel(len(defs), func(i int) error {
		ctx := context.Background()
		if i%2 == 1 {
			ctx = cancelled
		}
		var err error
		defs[i], err = env.generator.Ensure(ctx, period.Daily, testNow)
		return err
	})

	for i := 0; i < len(defs); i += 2 {
		if errs[i] != nil {
			t.Fatalf("Ensure #%d with a live context error = %v", i, errs[i])
		}
		if len(defs[i]) != 2 {
			t.Fatalf("Ensure #%d = %+v, want 2 quests", i, defs[i])
		}
	}

	// Callers that shared a generation own their slices.
	defs[0][0].Code = "changed"
	for i := 2; i < len(defs); i += 2 {
		if defs[i][0].Code == "changed" {
			t.Errorf("Ensure #%d shares its slice with #0", i)
		}
	}

	active, err := env.generator.Active(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if len(active) != 3 || active[0].Period != period.Daily || active[2].Period != period.Weekly {
		t.Errorf("Active() = %+v, want two daily then one weekly", active)
	}
}
