package similarity

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"reviewguard/internal/core/normalize"
)

func text(s string) normalize.Text {
	v := normalize.Canonical(s)
	return normalize.Text{Value: v, Tokens: normalize.Tokenize(v)}
}

func TestJaccard(t *testing.T) {
	a := Set([]string{"a", "b", "c"})
	b := Set([]string{"b", "c", "d"})
	if got := Jaccard(a, b); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("Jaccard = %v, want 0.5", got)
	}
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Fatal("Jaccard not symmetric")
	}
	if got := Jaccard(a, a); got != 1 {
		t.Fatalf("self Jaccard = %v", got)
	}
	if got := Jaccard(Set(nil), a); got != 0 {
		t.Fatalf("empty Jaccard = %v", got)
	}
}

func TestIndex_DuplicateScoresOne(t *testing.T) {
	x := New(10)
	r := text("The battery lasts all day and the screen is bright")
	if got := x.Similarity("p1", r.Tokens); got != 0 {
		t.Fatalf("empty index similarity = %v", got)
	}
	if err := x.Insert("p1", r); err != nil {
		t.Fatal(err)
	}
	if got := x.Similarity("p1", r.Tokens); got != 1 {
		t.Fatalf("duplicate similarity = %v, want 1", got)
	}
	if got := x.Similarity("p2", r.Tokens); got != 0 {
		t.Fatalf("other target similarity = %v, want 0", got)
	}
	if !x.Contains("p1", r.Value) || x.Len("p1") != 1 {
		t.Fatal("inserted text not present")
	}
}

func TestIndex_MaxOverWindow(t *testing.T) {
	x := New(10)
	_ = x.Insert("p", text("alpha beta gamma delta"))
	_ = x.Insert("p", text("alpha beta epsilon zeta"))
	got := x.Similarity("p", text("alpha beta gamma eta").Tokens)
	if math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("similarity = %v, want 0.6", got)
	}
}

func TestIndex_EvictsOldest(t *testing.T) {
	x := New(3)
	for i := 0; i < 5; i++ {
		_ = x.Insert("p", text(fmt.Sprintf("review number %d", i)))
	}
	if x.Len("p") != 3 {
		t.Fatalf("Len = %d, want 3", x.Len("p"))
	}
	if x.Contains("p", "review number 0") || x.Contains("p", "review number 1") {
		t.Fatal("oldest entries not evicted")
	}
	for i := 2; i < 5; i++ {
		if !x.Contains("p", fmt.Sprintf("review number %d", i)) {
			t.Fatalf("entry %d missing", i)
		}
	}
}

func TestIndex_InsertEmptyTarget(t *testing.T) {
	if err := New(1).Insert("", text("x y z")); err != ErrNoTarget {
		t.Fatalf("err = %v, want ErrNoTarget", err)
	}
}

func TestIndex_DefaultWindow(t *testing.T) {
	if New(0).Window() != DefaultWindow {
		t.Fatal("default window not applied")
	}
}

func TestIndex_ConcurrentReadWrite(t *testing.T) {
	x := New(50)
	probe := text("concurrent probe text with several words")
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = x.Insert("shared", text(fmt.Sprintf("writer %d entry %d words", w, i)))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if s := x.Similarity("shared", probe.Tokens); s < 0 || s > 1 {
					t.Errorf("similarity out of range: %v", s)
					return
				}
			}
		}()
	}
	wg.Wait()
	if x.Len("shared") != 50 {
		t.Fatalf("Len = %d, want 50", x.Len("shared"))
	}
}
