package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TestScore is the outcome of one graded test batch.
type TestScore struct {
	Dogru  int `json:"dogru"`
	Yanlis int `json:"yanlis"`
}

// TopicResult aggregates a topic's running totals plus the per-test scores.
// The stored JSON mixes the totals and the "test_N" objects in one object
// ({"dogru":3,"yanlis":2,"test_1":{...}}), which is why it needs a custom
// codec instead of plain struct tags.
type TopicResult struct {
	Dogru  int
	Yanlis int
	Tests  map[string]TestScore
}

func (t TopicResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(t.Tests)+2)
	out["dogru"] = t.Dogru
	out["yanlis"] = t.Yanlis
	for key, score := range t.Tests {
		out[key] = score
	}
	return json.Marshal(out)
}

func (t *TopicResult) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Tests = map[string]TestScore{}
	for key, value := range raw {
		switch {
		case key == "dogru":
			if err := json.Unmarshal(value, &t.Dogru); err != nil {
				return fmt.Errorf("topic result %q: %w", key, err)
			}
		case key == "yanlis":
			if err := json.Unmarshal(value, &t.Yanlis); err != nil {
				return fmt.Errorf("topic result %q: %w", key, err)
			}
		case strings.HasPrefix(key, "test_"):
			var score TestScore
			if err := json.Unmarshal(value, &score); err != nil {
				return fmt.Errorf("topic result %q: %w", key, err)
			}
			t.Tests[key] = score
		}
		// Unknown keys from older writers are dropped on rewrite.
	}
	return nil
}

// Results mirrors the opaque "sonuclar" blob: subject -> topic -> result.
type Results map[string]map[string]*TopicResult

// ParseResults decodes the blob the account service hands out. An empty blob
// is an empty result set.
func ParseResults(blob json.RawMessage) (Results, error) {
	if len(blob) == 0 {
		return Results{}, nil
	}
	r := Results{}
	if err := json.Unmarshal(blob, &r); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return r, nil
}

// Encode serializes the result set back into blob form.
func (r Results) Encode() (json.RawMessage, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return data, nil
}

// Apply records a graded test, replacing any previous score for the same
// test number: the old score is subtracted from the topic totals before the
// new one is added, so retakes do not inflate the totals.
func (r Results) Apply(ders, konu string, testNo int, score TestScore) {
	if r[ders] == nil {
		r[ders] = map[string]*TopicResult{}
	}
	tr := r[ders][konu]
	if tr == nil {
		tr = &TopicResult{Tests: map[string]TestScore{}}
		r[ders][konu] = tr
	}
	if tr.Tests == nil {
		tr.Tests = map[string]TestScore{}
	}

	key := fmt.Sprintf("test_%d", testNo)
	if prev, ok := tr.Tests[key]; ok {
		tr.Dogru -= prev.Dogru
		tr.Yanlis -= prev.Yanlis
	}
	tr.Dogru += score.Dogru
	tr.Yanlis += score.Yanlis
	tr.Tests[key] = score
}

// SubjectStats is the per-subject aggregate view.
type SubjectStats struct {
	Dogru       int `json:"dogru"`
	Yanlis      int `json:"yanlis"`
	Toplam      int `json:"toplam"`
	BasariYuzde int `json:"basari_yuzde"`
}

// Stats is the overall aggregate over a result set.
type Stats struct {
	Dogru       int                     `json:"dogru"`
	Yanlis      int                     `json:"yanlis"`
	Toplam      int                     `json:"toplam"`
	BasariYuzde int                     `json:"basari_yuzde"`
	Dersler     map[string]SubjectStats `json:"dersler"`
}

// Aggregate computes overall and per-subject totals and success rates.
func (r Results) Aggregate() Stats {
	stats := Stats{Dersler: map[string]SubjectStats{}}
	for ders, konular := range r {
		var sub SubjectStats
		for _, tr := range konular {
			sub.Dogru += tr.Dogru
			sub.Yanlis += tr.Yanlis
		}
		sub.Toplam = sub.Dogru + sub.Yanlis
		if sub.Toplam > 0 {
			sub.BasariYuzde = sub.Dogru * 100 / sub.Toplam
		}
		stats.Dersler[ders] = sub

		stats.Dogru += sub.Dogru
		stats.Yanlis += sub.Yanlis
	}
	stats.Toplam = stats.Dogru + stats.Yanlis
	if stats.Toplam > 0 {
		stats.BasariYuzde = stats.Dogru * 100 / stats.Toplam
	}
	return stats
}
