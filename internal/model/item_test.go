package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ItemStatus
		want     bool
	}{
		{ItemStatusReported, ItemStatusMatched, true},
		{ItemStatusMatched, ItemStatusUnderReview, true},
		{ItemStatusUnderReview, ItemStatusMatched, true},
		{ItemStatusUnderReview, ItemStatusReturned, true},
		{ItemStatusMatched, ItemStatusReturned, true},
		{ItemStatusReported, ItemStatusExpired, true},
		{ItemStatusMatched, ItemStatusExpired, true},
		{ItemStatusExpired, ItemStatusArchived, true},
		// Never back to reported.
		{ItemStatusMatched, ItemStatusReported, false},
		// Sweeper never touches claims under review.
		{ItemStatusUnderReview, ItemStatusExpired, false},
		{ItemStatusUnderReview, ItemStatusArchived, false},
		{ItemStatusReturned, ItemStatusMatched, false},
		{ItemStatusExpired, ItemStatusMatched, false},
		{ItemStatusReported, ItemStatusUnderReview, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if Category("furniture").Valid() {
		t.Error("expected unknown category to be invalid")
	}
}

func TestVerificationQuestions(t *testing.T) {
	for _, c := range Categories {
		if got := len(VerificationQuestions(c)); got != QuestionsPerClaim {
			t.Errorf("category %s: expected %d questions, got %d", c, QuestionsPerClaim, got)
		}
	}
	if got := VerificationQuestions("unknown"); got[0] != VerificationQuestions(CategoryOther)[0] {
		t.Errorf("unknown category should fall back to other, got %q", got[0])
	}
}

func TestTokenStateAt(t *testing.T) {
	expires := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	token := &PickupToken{ID: "t", ClaimID: "c", ExpiresAt: expires}

	if got := token.StateAt(expires.Add(-time.Millisecond)); got != TokenValid {
		t.Errorf("1ms before expiry: got %s, want valid", got)
	}
	if got := token.StateAt(expires); got != TokenExpired {
		t.Errorf("at expiry: got %s, want expired", got)
	}
	if got := token.StateAt(expires.Add(time.Millisecond)); got != TokenExpired {
		t.Errorf("1ms after expiry: got %s, want expired", got)
	}

	redeemed := expires.Add(-time.Minute)
	token.RedeemedAt = &redeemed
	if got := token.StateAt(expires.Add(-time.Hour)); got != TokenRedeemed {
		t.Errorf("redeemed token: got %s, want redeemed", got)
	}
}

func TestParseEventDate(t *testing.T) {
	d, err := ParseEventDate("2024-01-03")
	if err != nil {
		t.Fatalf("ParseEventDate: %v", err)
	}
	if !d.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", d)
	}
	if _, err := ParseEventDate("03/01/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}
