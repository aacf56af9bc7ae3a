package quiz

import (
	"errors"

	"kpssquiz/internal/models"
)

// QuestionsPerTest is the fixed batch size a topic's question list is
// chunked into. The last test of a topic may be smaller.
const QuestionsPerTest = 5

var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrUnknownTopic   = errors.New("unknown topic")
	ErrUnknownTest    = errors.New("unknown test number")
)

// TestInfo describes one test batch within a topic.
type TestInfo struct {
	No         int `json:"no"`
	SoruSayisi int `json:"soru_sayisi"`
}

// QuestionView is a question as delivered to clients: options only, no
// correct answer, no solution text.
type QuestionView struct {
	Soru       string            `json:"soru"`
	Secenekler map[string]string `json:"secenekler"`
	Maddeler   []string          `json:"maddeler,omitempty"`
}

// Service answers quiz queries against the bank and grades submitted
// batches. It never touches account storage; callers move the results blob
// through the account service.
type Service struct {
	bank *Bank
}

func NewService(bank *Bank) *Service {
	return &Service{bank: bank}
}

func (s *Service) Subjects() []string { return s.bank.Subjects() }

func (s *Service) Topics(ders string) ([]string, error) {
	topics, ok := s.bank.Topics(ders)
	if !ok {
		return nil, ErrUnknownSubject
	}
	return topics, nil
}

// Tests lists the batches available for a topic.
func (s *Service) Tests(ders, konu string) ([]TestInfo, error) {
	questions, err := s.topicQuestions(ders, konu)
	if err != nil {
		return nil, err
	}

	var tests []TestInfo
	for start := 0; start < len(questions); start += QuestionsPerTest {
		end := start + QuestionsPerTest
		if end > len(questions) {
			end = len(questions)
		}
		tests = append(tests, TestInfo{No: len(tests) + 1, SoruSayisi: end - start})
	}
	return tests, nil
}

// Questions returns the deliverable view of one test batch. Question indexes
// are relative to the batch, matching the answer map Grade expects.
func (s *Service) Questions(ders, konu string, testNo int) ([]QuestionView, error) {
	batch, err := s.batch(ders, konu, testNo)
	if err != nil {
		return nil, err
	}

	views := make([]QuestionView, len(batch))
	for i, q := range batch {
		views[i] = QuestionView{
			Soru:       q.Soru,
			Secenekler: q.Secenekler,
			Maddeler:   q.Maddeler,
		}
	}
	return views, nil
}

// Grade scores a submitted batch. answers maps batch-relative question index
// to the chosen option letter; questions without an entry count as wrong.
func (s *Service) Grade(ders, konu string, testNo int, answers map[int]string) (TestScore, error) {
	batch, err := s.batch(ders, konu, testNo)
	if err != nil {
		return TestScore{}, err
	}

	var score TestScore
	for i, q := range batch {
		if answers[i] == q.DogruCevap {
			score.Dogru++
		} else {
			score.Yanlis++
		}
	}
	return score, nil
}

// Solutions returns the correct answers and solution texts for a batch,
// for showing after a submission has been graded.
func (s *Service) Solutions(ders, konu string, testNo int) ([]models.Question, error) {
	return s.batch(ders, konu, testNo)
}

func (s *Service) topicQuestions(ders, konu string) ([]models.Question, error) {
	if _, ok := s.bank.Topics(ders); !ok {
		return nil, ErrUnknownSubject
	}
	questions, ok := s.bank.Questions(ders, konu)
	if !ok {
		return nil, ErrUnknownTopic
	}
	return questions, nil
}

func (s *Service) batch(ders, konu string, testNo int) ([]models.Question, error) {
	questions, err := s.topicQuestions(ders, konu)
	if err != nil {
		return nil, err
	}

	start := (testNo - 1) * QuestionsPerTest
	if testNo < 1 || start >= len(questions) {
		return nil, ErrUnknownTest
	}
	end := start + QuestionsPerTest
	if end > len(questions) {
		end = len(questions)
	}
	return questions[start:end], nil
}
