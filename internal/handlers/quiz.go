package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"kpssquiz/internal/metrics"
	"kpssquiz/internal/middleware"
	"kpssquiz/internal/quiz"
)

// ==========================
// QuizHandler
// ==========================
type QuizHandler struct {
	Quiz     *quiz.Service
	Accounts resultsAccess
}

// resultsAccess is the slice of the account service the quiz endpoints need:
// the opaque results blob, nothing else.
type resultsAccess interface {
	Results(username string) (json.RawMessage, error)
	SaveResults(username string, results json.RawMessage) error
}

// ==========================
// Subjects / Topics / Tests
// ==========================
func (h *QuizHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"subjects": h.Quiz.Subjects()})
}

func (h *QuizHandler) Topics(w http.ResponseWriter, r *http.Request) {
	ders := pathParam(r, "ders")

	topics, err := h.Quiz.Topics(ders)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"subject": ders, "topics": topics})
}

func (h *QuizHandler) Tests(w http.ResponseWriter, r *http.Request) {
	ders := pathParam(r, "ders")
	konu := pathParam(r, "konu")

	tests, err := h.Quiz.Tests(ders, konu)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"subject": ders, "topic": konu, "tests": tests})
}

// ==========================
// Questions (answers stripped)
// ==========================
func (h *QuizHandler) Questions(w http.ResponseWriter, r *http.Request) {
	ders := pathParam(r, "ders")
	konu := pathParam(r, "konu")
	no, err := strconv.Atoi(pathParam(r, "no"))
	if err != nil {
		JSONError(w, "invalid test number", http.StatusBadRequest)
		return
	}

	questions, err := h.Quiz.Questions(ders, konu, no)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"test_no": no, "questions": questions})
}

// ==========================
// Submit (grade + persist through the opaque results path)
// ==========================
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ders := pathParam(r, "ders")
	konu := pathParam(r, "konu")
	no, err := strconv.Atoi(pathParam(r, "no"))
	if err != nil {
		JSONError(w, "invalid test number", http.StatusBadRequest)
		return
	}

	var input struct {
		Answers map[int]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	score, err := h.Quiz.Grade(ders, konu, no, input.Answers)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	blob, err := h.Accounts.Results(username)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	results, err := quiz.ParseResults(blob)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	results.Apply(ders, konu, no, score)

	encoded, err := results.Encode()
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if err := h.Accounts.SaveResults(username, encoded); err != nil {
		WriteServiceError(w, err)
		return
	}

	metrics.RecordGradedTest(ders)

	solutions, err := h.Quiz.Solutions(ders, konu, no)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"test_no":   no,
		"score":     score,
		"solutions": solutions,
	})
}

// ==========================
// Stats
// ==========================
func (h *QuizHandler) Stats(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	blob, err := h.Accounts.Results(username)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	results, err := quiz.ParseResults(blob)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results.Aggregate())
}

func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrUnknownSubject),
		errors.Is(err, quiz.ErrUnknownTopic),
		errors.Is(err, quiz.ErrUnknownTest):
		JSONError(w, err.Error(), http.StatusNotFound)
	default:
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
