package quiz

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpssquiz/internal/models"
)

func writeBank(t *testing.T, bank models.QuestionBank) *Bank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soru_bankasi.json")
	data, err := json.Marshal(bank)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	b := NewBank(path)
	require.NoError(t, b.Reload())
	return b
}

func question(n int, correct string) models.Question {
	return models.Question{
		Soru:       "Soru " + string(rune('0'+n)),
		Secenekler: map[string]string{"A": "bir", "B": "iki", "C": "üç", "D": "dört"},
		DogruCevap: correct,
		Cozum:      "çözüm",
	}
}

func testBank(t *testing.T) *Bank {
	// 7 questions -> test_1 has 5, test_2 has 2.
	questions := []models.Question{
		question(1, "A"), question(2, "B"), question(3, "C"),
		question(4, "D"), question(5, "A"), question(6, "B"), question(7, "C"),
	}
	return writeBank(t, models.QuestionBank{
		"Matematik": {"Temel Kavramlar": questions},
		"Tarih":     {"Osmanlı": questions[:3]},
	})
}

func TestBank_Reload_MissingFile(t *testing.T) {
	b := NewBank(filepath.Join(t.TempDir(), "yok.json"))
	require.NoError(t, b.Reload())
	assert.Empty(t, b.Subjects())
}

func TestBank_Reload_CorruptFileKeepsOldData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soru_bankasi.json")
	good, _ := json.Marshal(models.QuestionBank{"Tarih": {"Osmanlı": {question(1, "A")}}})
	require.NoError(t, os.WriteFile(path, good, 0o644))

	b := NewBank(path)
	require.NoError(t, b.Reload())

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	assert.Error(t, b.Reload())
	assert.Equal(t, []string{"Tarih"}, b.Subjects(), "corrupt reload must keep the previous bank")
}

func TestService_SubjectsAndTopics(t *testing.T) {
	s := NewService(testBank(t))

	assert.Equal(t, []string{"Matematik", "Tarih"}, s.Subjects())

	topics, err := s.Topics("Matematik")
	require.NoError(t, err)
	assert.Equal(t, []string{"Temel Kavramlar"}, topics)

	_, err = s.Topics("Coğrafya")
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestService_Tests_Chunking(t *testing.T) {
	s := NewService(testBank(t))

	tests, err := s.Tests("Matematik", "Temel Kavramlar")
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, TestInfo{No: 1, SoruSayisi: 5}, tests[0])
	assert.Equal(t, TestInfo{No: 2, SoruSayisi: 2}, tests[1])

	_, err = s.Tests("Matematik", "Yok Konu")
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestService_Questions_StripsAnswers(t *testing.T) {
	s := NewService(testBank(t))

	views, err := s.Questions("Matematik", "Temel Kavramlar", 2)
	require.NoError(t, err)
	require.Len(t, views, 2)

	data, err := json.Marshal(views)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dogru_cevap")
	assert.NotContains(t, string(data), "çözüm")

	_, err = s.Questions("Matematik", "Temel Kavramlar", 3)
	assert.ErrorIs(t, err, ErrUnknownTest)
	_, err = s.Questions("Matematik", "Temel Kavramlar", 0)
	assert.ErrorIs(t, err, ErrUnknownTest)
}

func TestService_Grade(t *testing.T) {
	s := NewService(testBank(t))

	// Batch 1 answers: A B C D A. Three right, one wrong, one unanswered.
	score, err := s.Grade("Matematik", "Temel Kavramlar", 1, map[int]string{
		0: "A", 1: "B", 2: "C", 3: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, TestScore{Dogru: 3, Yanlis: 2}, score)

	score, err = s.Grade("Matematik", "Temel Kavramlar", 2, map[int]string{0: "B", 1: "C"})
	require.NoError(t, err)
	assert.Equal(t, TestScore{Dogru: 2, Yanlis: 0}, score)
}

func TestResults_ApplyRetakeSemantics(t *testing.T) {
	r := Results{}

	r.Apply("Matematik", "Temel Kavramlar", 1, TestScore{Dogru: 2, Yanlis: 3})
	r.Apply("Matematik", "Temel Kavramlar", 2, TestScore{Dogru: 1, Yanlis: 1})

	tr := r["Matematik"]["Temel Kavramlar"]
	assert.Equal(t, 3, tr.Dogru)
	assert.Equal(t, 4, tr.Yanlis)

	// Retake of test 1 replaces its contribution instead of stacking.
	r.Apply("Matematik", "Temel Kavramlar", 1, TestScore{Dogru: 5, Yanlis: 0})
	assert.Equal(t, 6, tr.Dogru)
	assert.Equal(t, 1, tr.Yanlis)
	assert.Equal(t, TestScore{Dogru: 5, Yanlis: 0}, tr.Tests["test_1"])
}

func TestResults_BlobRoundTrip(t *testing.T) {
	blob := json.RawMessage(`{
		"Matematik": {
			"Temel Kavramlar": {"dogru": 3, "yanlis": 2, "test_1": {"dogru": 3, "yanlis": 2}}
		}
	}`)

	r, err := ParseResults(blob)
	require.NoError(t, err)
	tr := r["Matematik"]["Temel Kavramlar"]
	require.NotNil(t, tr)
	assert.Equal(t, 3, tr.Dogru)
	assert.Equal(t, TestScore{Dogru: 3, Yanlis: 2}, tr.Tests["test_1"])

	encoded, err := r.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(encoded))
}

func TestResults_Aggregate(t *testing.T) {
	r := Results{}
	r.Apply("Matematik", "Temel Kavramlar", 1, TestScore{Dogru: 4, Yanlis: 1})
	r.Apply("Matematik", "Sayılar", 1, TestScore{Dogru: 2, Yanlis: 3})
	r.Apply("Tarih", "Osmanlı", 1, TestScore{Dogru: 3, Yanlis: 0})

	stats := r.Aggregate()
	assert.Equal(t, 9, stats.Dogru)
	assert.Equal(t, 4, stats.Yanlis)
	assert.Equal(t, 13, stats.Toplam)
	assert.Equal(t, 69, stats.BasariYuzde)

	mat := stats.Dersler["Matematik"]
	assert.Equal(t, SubjectStats{Dogru: 6, Yanlis: 4, Toplam: 10, BasariYuzde: 60}, mat)
	tar := stats.Dersler["Tarih"]
	assert.Equal(t, SubjectStats{Dogru: 3, Yanlis: 0, Toplam: 3, BasariYuzde: 100}, tar)
}

func TestParseResults_Empty(t *testing.T) {
	r, err := ParseResults(nil)
	require.NoError(t, err)
	assert.Empty(t, r)

	r, err = ParseResults(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Empty(t, r)
}
