package quiz

import (
	"time"

	"github.com/trezcool/mtihani/core"
)

type (
	// Question is a four-choice question worth Marks points.
	// Answer is the 1-based index of the correct choice.
	Question struct {
		ID        string    `json:"id" db:"id"`
		Question  string    `json:"question" db:"question"`
		Choice1   string    `json:"choice1" db:"choice1"`
		Choice2   string    `json:"choice2" db:"choice2"`
		Choice3   string    `json:"choice3" db:"choice3"`
		Choice4   string    `json:"choice4" db:"choice4"`
		Answer    int       `json:"answer" db:"answer"`
		Marks     int       `json:"marks" db:"marks"`
		Remarks   string    `json:"remarks,omitempty" db:"remarks"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	Quiz struct {
		ID        string    `json:"id" db:"id"`
		Name      string    `json:"name" db:"name"`
		IsActive  bool      `json:"is_active" db:"is_active"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	// QuizQuestion links a Question to a Quiz; a question appears at most once per quiz.
	QuizQuestion struct {
		ID         string `json:"id" db:"id"`
		QuizID     string `json:"quiz_id" db:"quiz_id"`
		QuestionID string `json:"question_id" db:"question_id"`
	}

	// Assignment binds a Quiz to a User for a single attempt.
	// Lifecycle: assigned (active, not submitted) -> submitted (terminal).
	Assignment struct {
		ID          string    `json:"id" db:"id"`
		QuizID      string    `json:"quiz_id" db:"quiz_id"`
		UserID      string    `json:"user_id" db:"user_id"`
		Score       int       `json:"score_achieved" db:"score_achieved"`
		IsSubmitted bool      `json:"is_submitted" db:"is_submitted"`
		IsActive    bool      `json:"is_active" db:"is_active"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	// Response is a user's recorded choice for one question of a submitted
	// attempt; immutable once created.
	Response struct {
		ID         string    `json:"id" db:"id"`
		QuizID     string    `json:"quiz_id" db:"quiz_id"`
		UserID     string    `json:"user_id" db:"user_id"`
		QuestionID string    `json:"question_id" db:"question_id"`
		Choice     int       `json:"choice" db:"choice"`
		CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
	}
)

// Actor is the request-scoped identity every authorization decision is made
// against; it is built from verified auth claims by the transport layer.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// View models

type (
	// QuestionView is a Question as shown to quiz takers: no answer index.
	QuestionView struct {
		QuizName   string `json:"quiz_name"`
		QuestionID string `json:"question_id" db:"question_id"`
		Question   string `json:"question"`
		Choice1    string `json:"choice1"`
		Choice2    string `json:"choice2"`
		Choice3    string `json:"choice3"`
		Choice4    string `json:"choice4"`
		Marks      int    `json:"marks"`
		Remarks    string `json:"remarks,omitempty"`
	}

	// AssignedQuiz is one row of a user's assignment listing.
	AssignedQuiz struct {
		QuizID      string `json:"quiz_id" db:"quiz_id"`
		QuizName    string `json:"quiz_name" db:"quiz_name"`
		Score       int    `json:"score_achieved" db:"score_achieved"`
		IsSubmitted bool   `json:"is_submitted" db:"is_submitted"`
	}

	// ScoreResult is the outcome of a submitted attempt.
	ScoreResult struct {
		QuizID      string    `json:"quiz_id" db:"quiz_id"`
		Score       int       `json:"score_achieved" db:"score_achieved"`
		IsSubmitted bool      `json:"is_submitted" db:"is_submitted"`
		SubmittedAt time.Time `json:"submitted_at"` // UTC
	}
)

// Inputs

type NewQuestion struct {
	Question string `json:"question" validate:"required"`
	Choice1  string `json:"choice1" validate:"required"`
	Choice2  string `json:"choice2" validate:"required"`
	Choice3  string `json:"choice3" validate:"required"`
	Choice4  string `json:"choice4" validate:"required"`
	Answer   int    `json:"answer" validate:"required,choice"`
	Marks    int    `json:"marks" validate:"required,min=1"`
	Remarks  string `json:"remarks"`
}

func (nq *NewQuestion) Validate() error {
	nq.Question = core.CleanString(nq.Question)
	nq.Choice1 = core.CleanString(nq.Choice1)
	nq.Choice2 = core.CleanString(nq.Choice2)
	nq.Choice3 = core.CleanString(nq.Choice3)
	nq.Choice4 = core.CleanString(nq.Choice4)
	nq.Remarks = core.CleanString(nq.Remarks)
	return core.Validate.Struct(nq)
}

type NewQuiz struct {
	Name        string   `json:"name" validate:"required"`
	QuestionIDs []string `json:"question_ids" validate:"required,min=1,unique,dive,required"`
}

func (nq *NewQuiz) Validate() error {
	nq.Name = core.CleanString(nq.Name)
	return core.Validate.Struct(nq)
}

type AssignQuiz struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,unique,dive,required"`
}

func (aq *AssignQuiz) Validate() error {
	return core.Validate.Struct(aq)
}

// Attempt is a user's submission: question id -> chosen choice index.
// A mapping cannot carry duplicate question ids; on JSON decoding, repeated
// keys collapse to the last value before the core ever sees them.
type Attempt struct {
	Responses map[string]int `json:"responses" validate:"required,min=1,dive,choice"`
}

func (at *Attempt) Validate() error {
	return core.Validate.Struct(at)
}
