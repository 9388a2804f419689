package similarity

import "sort"

// Document is one candidate in a similarity query.
type Document struct {
	ID   int64
	Text string

	// Recency orders equally similar documents; higher is more recent.
	Recency int64
}

// Match is a corpus document scored against the query target.
type Match struct {
	ID      int64
	Score   float64
	Recency int64
}

// SimilarProblems scores every corpus document against target and returns
// those scoring above Threshold, best first. Equal scores go to the more
// recent document. A corpus with fewer than two distinct documents has no
// meaningful vocabulary and yields no matches.
func SimilarProblems(target string, corpus []Document) []Match {
	docs := dedupe(corpus)
	if len(docs) < 2 {
		return nil
	}

	texts := make([]string, 0, len(docs)+1)
	texts = append(texts, target)
	for _, d := range docs {
		texts = append(texts, d.Text)
	}
	ix := Fit(texts)
	tv := ix.Vector(target)

	var matches []Match
	for _, d := range docs {
		score := clamp(tv.Dot(ix.Vector(d.Text)))
		if score > Threshold {
			matches = append(matches, Match{ID: d.ID, Score: score, Recency: d.Recency})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Recency != b.Recency {
			return a.Recency > b.Recency
		}
		return a.ID < b.ID
	})
	return matches
}

// dedupe keeps one document per ID, the most recent one.
func dedupe(corpus []Document) []Document {
	byID := make(map[int64]int, len(corpus))
	out := make([]Document, 0, len(corpus))
	for _, d := range corpus {
		if i, ok := byID[d.ID]; ok {
			if d.Recency > out[i].Recency {
				out[i] = d
			}
			continue
		}
		byID[d.ID] = len(out)
		out = append(out, d)
	}
	return out
}
