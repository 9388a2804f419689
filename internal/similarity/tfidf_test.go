package similarity

import (
	"fmt"
	"math"
	"slices"
	"testing"
)

const eps = 1e-9

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Two-Sum!", "two sum"},
		{"Find ```\nfor x in y: pass\n``` the   PAIR", "find the pair"},
		{"  a\tb\nc  ", "a b c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTerms(t *testing.T) {
	got := Terms("Reverse a linked list")
	want := []string{"reverse", "linked", "list", "reverse linked", "linked list"}
	if !slices.Equal(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}

	if got := Terms("the and of"); len(got) != 0 {
		t.Errorf("stop words only: Terms = %v, want empty", got)
	}
}

func TestFit_MaxFeatures(t *testing.T) {
	var docs []string
	for i := range 600 {
		docs = append(docs, fmt.Sprintf("term%d word%d", i, i))
	}
	ix := Fit(docs)
	if ix.Vocabulary() > MaxFeatures {
		t.Errorf("vocabulary = %d, want <= %d", ix.Vocabulary(), MaxFeatures)
	}
}

func TestScore_SymmetricAndSelfMaximal(t *testing.T) {
	docs := []string{
		"Reverse a linked list iteratively",
		"Reverse a linked list recursively",
		"Maximum profit from stock prices",
		"Find the longest palindromic substring",
	}
	ix := Fit(docs)

	for i, a := range docs {
		self := ix.Score(a, a)
		if math.Abs(self-1) > eps {
			t.Errorf("self similarity of %q = %v, want 1", a, self)
		}
		for _, b := range docs[i+1:] {
			ab, ba := ix.Score(a, b), ix.Score(b, a)
			if ab != ba {
				t.Errorf("Score(%q, %q) = %v, reverse = %v", a, b, ab, ba)
			}
			if ab > self+eps {
				t.Errorf("Score(%q, %q) = %v exceeds self similarity", a, b, ab)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("score %v out of range", ab)
			}
		}
	}
}

func TestVector_UnknownTerms(t *testing.T) {
	ix := Fit([]string{"binary search tree"})
	if v := ix.Vector("graph coloring"); len(v) != 0 {
		t.Errorf("vector = %v, want empty", v)
	}
	if s := ix.Score("graph coloring", "binary search tree"); s != 0 {
		t.Errorf("score = %v, want 0", s)
	}
}
