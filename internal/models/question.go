package models

// Question is one multiple-choice entry in the question bank. Field names
// mirror soru_bankasi.json.
type Question struct {
	Soru       string            `json:"soru"`
	Secenekler map[string]string `json:"secenekler"`
	DogruCevap string            `json:"dogru_cevap"`
	Cozum      string            `json:"cozum,omitempty"`
	Maddeler   []string          `json:"maddeler,omitempty"`
}

// QuestionBank maps subject -> topic -> ordered question list.
type QuestionBank map[string]map[string][]Question
