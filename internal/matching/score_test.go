package matching

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/erazemk/traceback/internal/model"
)

func day(s string) time.Time {
	d, err := model.ParseEventDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(category model.Category, description, location, date string) *model.Item {
	return &model.Item{
		Category:    category,
		Description: description,
		Location:    location,
		EventDate:   day(date),
	}
}

func TestScoreKeysScenario(t *testing.T) {
	lost := item(model.CategoryKeys, "silver house key with red tag", "Lobby", "2024-01-01")
	found := item(model.CategoryKeys, "red tag silver key", "Lobby", "2024-01-03")

	got := Explain(lost, found)
	want := Breakdown{Category: 30, Overlap: 4.0 / 6.0 * 40, Location: 20, Recency: 10}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Explain mismatch (-want +got):\n%s", diff)
	}
	if s := Score(lost, found); s != 87 {
		t.Errorf("expected score 87, got %d", s)
	}
}

func TestScoreIsNotCommutative(t *testing.T) {
	long := item(model.CategoryKeys, "silver house key with red tag", "Lobby", "2024-01-01")
	short := item(model.CategoryKeys, "red tag silver key", "Lobby", "2024-01-01")

	ab := Score(long, short)
	ba := Score(short, long)
	if ab == ba {
		t.Errorf("expected asymmetric scores, both were %d", ab)
	}
	// Every short token appears in the long description.
	if ba != 100 {
		t.Errorf("expected 100 when all lost tokens are present, got %d", ba)
	}
}

func TestScoreCategoryTerm(t *testing.T) {
	a := item(model.CategoryKeys, "x", "A", "2024-01-01")
	b := item(model.CategoryElectronics, "y", "B", "2024-03-01")
	if got := Explain(a, b).Category; got != 0 {
		t.Errorf("category mismatch should contribute 0, got %v", got)
	}
	b.Category = model.CategoryKeys
	if got := Explain(a, b).Category; got != CategoryWeight {
		t.Errorf("category match should contribute %d, got %v", CategoryWeight, got)
	}
}

func TestScoreIdenticalDescription(t *testing.T) {
	a := item(model.CategoryOther, "Black leather wallet, slightly worn", "Gym", "2024-01-01")
	b := item(model.CategoryClothing, "black leather wallet, slightly worn", "Pool", "2024-02-01")
	if got := Explain(a, b).Overlap; got != OverlapWeight {
		t.Errorf("identical descriptions should contribute %d, got %v", OverlapWeight, got)
	}
	if got := Score(a, b); got != 40 {
		t.Errorf("expected 40, got %d", got)
	}
}

func TestScorePunctuationNotStripped(t *testing.T) {
	a := item(model.CategoryOther, "blue umbrella", "Gate", "2024-01-01")
	b := item(model.CategoryOther, "blue umbrella.", "Gate", "2024-01-01")
	if got := Explain(a, b).Overlap; got != 20 {
		t.Errorf("expected 'umbrella' and 'umbrella.' to differ, overlap %v", got)
	}
}

func TestScoreDuplicateLostTokens(t *testing.T) {
	a := item(model.CategoryOther, "red red bag", "Gate", "2024-01-01")
	b := item(model.CategoryOther, "red", "Gate", "2024-01-01")
	// Two of three lost tokens are present.
	want := 2.0 / 3.0 * OverlapWeight
	if got := Explain(a, b).Overlap; !cmp.Equal(got, want, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScoreEmptyLostDescription(t *testing.T) {
	a := item(model.CategoryOther, "   ", "Gate", "2024-01-01")
	b := item(model.CategoryOther, "anything", "Gate", "2024-01-01")
	if got := Explain(a, b).Overlap; got != 0 {
		t.Errorf("empty lost description should contribute 0, got %v", got)
	}
}

func TestScoreLocationIsCaseSensitive(t *testing.T) {
	a := item(model.CategoryOther, "bag", "Lobby", "2024-01-01")
	b := item(model.CategoryOther, "bag", "lobby", "2024-01-01")
	if got := Explain(a, b).Location; got != 0 {
		t.Errorf("expected case-sensitive location, got %v", got)
	}
}

func TestScoreRecencyWindow(t *testing.T) {
	tests := []struct {
		lost, found string
		want        float64
	}{
		{"2024-01-01", "2024-01-08", RecencyWeight},
		{"2024-01-08", "2024-01-01", RecencyWeight},
		{"2024-01-01", "2024-01-09", 0},
		{"2024-01-01", "2024-01-01", RecencyWeight},
	}
	for _, tt := range tests {
		a := item(model.CategoryOther, "bag", "X", tt.lost)
		b := item(model.CategoryOther, "bag", "X", tt.found)
		if got := Explain(a, b).Recency; got != tt.want {
			t.Errorf("lost %s found %s: got %v, want %v", tt.lost, tt.found, got, tt.want)
		}
	}
}

func TestScoreRange(t *testing.T) {
	descriptions := []string{"", "a", "a b c", "the quick brown fox", "A a A a"}
	for _, d1 := range descriptions {
		for _, d2 := range descriptions {
			s := Score(item(model.CategoryKeys, d1, "L", "2024-01-01"), item(model.CategoryKeys, d2, "L", "2024-01-02"))
			if s < 0 || s > 100 {
				t.Errorf("score(%q, %q) = %d out of range", d1, d2, s)
			}
		}
	}
}
