// Package inmem provides in-memory repository implementations with the same
// transactional semantics as the Postgres ones. Dev and test use only.
package inmem

import (
	"sync"

	"github.com/trezcool/mtihani/core/quiz"
	"github.com/trezcool/mtihani/core/user"
)

// DB holds all entities behind one mutex so every repository operation is
// atomic; insertion order is preserved for deterministic listings.
type DB struct {
	mu sync.RWMutex

	users       []user.User
	questions   []quiz.Question
	quizzes     []quiz.Quiz
	links       []quiz.QuizQuestion
	assignments []quiz.Assignment
	responses   []quiz.Response
}

func NewDB() *DB {
	return &DB{}
}

// Reset drops all stored entities; test helper.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = nil
	db.questions = nil
	db.quizzes = nil
	db.links = nil
	db.assignments = nil
	db.responses = nil
}

// Responses returns a copy of all stored responses; test helper.
func (db *DB) Responses() []quiz.Response {
	db.mu.RLock()
	defer db.mu.RUnlock()
	responses := make([]quiz.Response, len(db.responses))
	copy(responses, db.responses)
	return responses
}

// Links returns a copy of all stored quiz-question links; test helper.
func (db *DB) Links() []quiz.QuizQuestion {
	db.mu.RLock()
	defer db.mu.RUnlock()
	links := make([]quiz.QuizQuestion, len(db.links))
	copy(links, db.links)
	return links
}
