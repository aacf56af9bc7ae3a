package quiz

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"kpssquiz/internal/models"
)

// Bank holds the question bank loaded from soru_bankasi.json. The file is
// maintained by hand, so Reload lets edits land without restarting the
// server (the scheduler calls it periodically).
type Bank struct {
	mu   sync.RWMutex
	path string
	data models.QuestionBank
}

func NewBank(path string) *Bank {
	return &Bank{path: path, data: models.QuestionBank{}}
}

// Reload re-reads the backing file. A missing file leaves an empty bank; a
// corrupt file is an error and keeps the previously loaded questions.
func (b *Bank) Reload() error {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		b.mu.Lock()
		b.data = models.QuestionBank{}
		b.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read question bank %s: %w", b.path, err)
	}

	bank := models.QuestionBank{}
	if err := json.Unmarshal(data, &bank); err != nil {
		return fmt.Errorf("parse question bank %s: %w", b.path, err)
	}

	b.mu.Lock()
	b.data = bank
	b.mu.Unlock()
	return nil
}

// Subjects returns the subject names in stable order.
func (b *Bank) Subjects() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.data))
	for ders := range b.data {
		out = append(out, ders)
	}
	sort.Strings(out)
	return out
}

// Topics returns the topic names for a subject in stable order.
func (b *Bank) Topics(ders string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	konular, ok := b.data[ders]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(konular))
	for konu := range konular {
		out = append(out, konu)
	}
	sort.Strings(out)
	return out, true
}

// Questions returns the full question list for a topic.
func (b *Bank) Questions(ders, konu string) ([]models.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	konular, ok := b.data[ders]
	if !ok {
		return nil, false
	}
	questions, ok := konular[konu]
	if !ok {
		return nil, false
	}
	return questions, true
}
