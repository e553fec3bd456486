package bioscore

import (
	"math"
	"strings"
	"testing"
)

func TestScoreEmpty(t *testing.T) {
	if got := Score(""); got != 0 {
		t.Fatalf("empty text score = %v, want 0", got)
	}
}

func TestScoreSingleFamily(t *testing.T) {
	got := Score("He starred in many films over a long career.")
	if math.Abs(got-perFamily) > 1e-9 {
		t.Fatalf("single family score = %v, want %v", got, perFamily)
	}
}

func TestFamilyCountsOnce(t *testing.T) {
	// several career keywords still count as one family
	got := Score("A film career of many roles, starred in a series, won an award.")
	if math.Abs(got-perFamily) > 1e-9 {
		t.Fatalf("repeated keywords score = %v, want %v", got, perFamily)
	}
}

func TestScoreClampsAtCap(t *testing.T) {
	text := strings.Join([]string{
		"He was born in Iowa and grew up on a farm.",
		"His father and mother raised four children.",
		"He studied at a drama school and graduated with a degree.",
		"His early career saw a breakthrough debut.",
		"He starred in film and television and was nominated for an award.",
		"He married twice and later divorced.",
		"He died of cancer after a long illness; the funeral was private.",
	}, " ")
	if got := Score(text); got != Cap {
		t.Fatalf("full text score = %v, want cap %v", got, Cap)
	}
}

func TestFamiliesOrderStable(t *testing.T) {
	text := "He died young. He was born in 1907. His career was long."
	want := []string{"childhood", "career", "death_illness"}
	got := Families(text)
	if len(got) != len(want) {
		t.Fatalf("families = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("families[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCaseInsensitive(t *testing.T) {
	if Score("HE DIED OF CANCER") == 0 {
		t.Fatal("uppercase text should still match")
	}
}
