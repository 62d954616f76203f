package progression

import "testing"

func TestXPForNextLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{0, 100},
		{1, 100},
		{2, 229},
		{3, 373},
	}

	for _, tt := range tests {
		if got := XPForNextLevel(tt.level); got != tt.want {
			t.Errorf("XPForNextLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{328, 2},
		{329, 3},
		{701, 3},
		{702, 4},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForXPIsMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(1); xp <= 50000; xp += 37 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("LevelForXP(%d) = %d, dropped below %d", xp, level, prev)
		}
		prev = level
	}
}

func TestProgress(t *testing.T) {
	got := Progress(150)
	want := LevelProgress{Level: 2, IntoLevel: 50, ForNext: 229}
	if got != want {
		t.Errorf("Progress(150) = %+v, want %+v", got, want)
	}

	for _, xp := range []int64{0, 99, 100, 1234, 98765} {
		if p := Progress(xp); p.Level != LevelForXP(xp) {
			t.Errorf("Progress(%d).Level = %d, want %d", xp, p.Level, LevelForXP(xp))
		}
	}
}
