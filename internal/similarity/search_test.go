package similarity

import "testing"

func TestSimilarProblems(t *testing.T) {
	corpus := []Document{
		{ID: 1, Text: "Reverse a linked list recursively", Recency: 1},
		{ID: 2, Text: "Maximum profit from stock prices", Recency: 2},
		{ID: 3, Text: "Find the longest palindromic substring", Recency: 3},
	}
	got := SimilarProblems("Reverse a linked list iteratively", corpus)

	if len(got) != 1 {
		t.Fatalf("matches = %+v, want 1", got)
	}
	if got[0].ID != 1 {
		t.Errorf("match ID = %d, want 1", got[0].ID)
	}
	if got[0].Score <= Threshold || got[0].Score > 1 {
		t.Errorf("score = %v", got[0].Score)
	}
}

func TestSimilarProblems_TiesPreferRecent(t *testing.T) {
	corpus := []Document{
		{ID: 1, Text: "Reverse a linked list recursively", Recency: 10},
		{ID: 4, Text: "Reverse a linked list recursively", Recency: 20},
		{ID: 2, Text: "Maximum profit from stock prices", Recency: 30},
	}
	got := SimilarProblems("Reverse a linked list iteratively", corpus)
	if len(got) != 2 {
		t.Fatalf("matches = %+v, want 2", got)
	}
	if got[0].ID != 4 || got[1].ID != 1 {
		t.Errorf("order = %d, %d; want 4, 1", got[0].ID, got[1].ID)
	}
	if got[0].Score != got[1].Score {
		t.Errorf("scores differ: %v vs %v", got[0].Score, got[1].Score)
	}
}

func TestSimilarProblems_SortedDescending(t *testing.T) {
	corpus := []Document{
		{ID: 1, Text: "Reverse a linked list", Recency: 1},
		{ID: 2, Text: "Reverse a linked list in groups of k nodes", Recency: 2},
		{ID: 3, Text: "Detect a cycle in a linked list", Recency: 3},
		{ID: 4, Text: "Sort an array of integers", Recency: 4},
	}
	got := SimilarProblems("Reverse a linked list", corpus)
	if len(got) == 0 {
		t.Fatal("expected matches")
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("not descending at %d: %+v", i, got)
		}
	}
	for _, m := range got {
		if m.Score <= Threshold {
			t.Errorf("match below threshold: %+v", m)
		}
	}
	if got[0].ID != 1 {
		t.Errorf("best match = %d, want the identical problem", got[0].ID)
	}
}

func TestSimilarProblems_SmallCorpus(t *testing.T) {
	tests := []struct {
		name   string
		corpus []Document
	}{
		{"empty", nil},
		{"single", []Document{{ID: 1, Text: "Reverse a linked list"}}},
		{"single repeated", []Document{
			{ID: 1, Text: "Reverse a linked list", Recency: 1},
			{ID: 1, Text: "Reverse a linked list", Recency: 2},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SimilarProblems("Reverse a linked list", tt.corpus); len(got) != 0 {
				t.Errorf("matches = %+v, want none", got)
			}
		})
	}
}

func TestSimilarProblems_GrowingCorpus(t *testing.T) {
	// Each query refits, so differently sized corpora never conflict.
	texts := []string{
		"Reverse a linked list recursively",
		"Merge two sorted linked lists",
		"Maximum profit from stock prices",
		"Reverse a linked list in groups",
		"Longest common subsequence of two strings",
	}
	var corpus []Document
	for i, text := range texts {
		corpus = append(corpus, Document{ID: int64(i + 1), Text: text, Recency: int64(i)})
		for _, m := range SimilarProblems("Reverse a linked list iteratively", corpus) {
			if m.Score <= Threshold || m.Score > 1 {
				t.Fatalf("corpus size %d: bad score %+v", len(corpus), m)
			}
		}
	}
}
