package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/quiz"
)

type quizRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sqlx.DB, conf *core.Config) *quizRepository {
	return &quizRepository{db: db, timeout: conf.Database.Timeout}
}

// Questions

func (repo quizRepository) CreateQuestion(ctx context.Context, qst quiz.Question) (quiz.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO questions (id, question, choice1, choice2, choice3, choice4, answer, marks, remarks, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		qst.ID, qst.Question, qst.Choice1, qst.Choice2, qst.Choice3, qst.Choice4,
		qst.Answer, qst.Marks, qst.Remarks, qst.CreatedAt, qst.UpdatedAt,
	)
	if err != nil {
		return quiz.Question{}, storeErr(err, "creating question")
	}
	return qst, nil
}

func (repo quizRepository) GetQuestionsByID(ctx context.Context, ids []string) ([]quiz.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM questions WHERE id IN (?)`, ids)
	if err != nil {
		return nil, storeErr(err, "building questions query")
	}

	var qsts []quiz.Question
	if err = repo.db.SelectContext(ctx, &qsts, repo.db.Rebind(query), args...); err != nil {
		return nil, storeErr(err, "getting questions")
	}
	return qsts, nil
}

func (repo quizRepository) QueryAllQuestions(ctx context.Context) ([]quiz.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var qsts []quiz.Question
	if err := repo.db.SelectContext(ctx, &qsts, `SELECT * FROM questions ORDER BY created_at`); err != nil {
		return nil, storeErr(err, "querying questions")
	}
	return qsts, nil
}

// Quizzes

func (repo quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz, links []quiz.QuizQuestion) (quiz.Quiz, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return quiz.Quiz{}, storeErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO quizzes (id, name, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		qz.ID, qz.Name, qz.IsActive, qz.CreatedAt, qz.UpdatedAt,
	)
	if err != nil {
		return quiz.Quiz{}, storeErr(err, "creating quiz")
	}

	for _, link := range links {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO quiz_questions (id, quiz_id, question_id) VALUES ($1, $2, $3)`,
			link.ID, link.QuizID, link.QuestionID,
		)
		if err != nil {
			return quiz.Quiz{}, storeErr(err, "linking question to quiz")
		}
	}

	if err = tx.Commit(); err != nil {
		return quiz.Quiz{}, storeErr(err, "committing quiz")
	}
	return qz, nil
}

func (repo quizRepository) GetQuizByID(ctx context.Context, id string) (quiz.Quiz, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var qz quiz.Quiz
	err := repo.db.GetContext(ctx, &qz, `SELECT * FROM quizzes WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	if err != nil {
		return quiz.Quiz{}, storeErr(err, "getting quiz")
	}
	return qz, nil
}

func (repo quizRepository) GetQuizQuestions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var qsts []quiz.Question
	err := repo.db.SelectContext(
		ctx,
		&qsts,
		`SELECT q.* FROM questions q
		 JOIN quiz_questions qq ON qq.question_id = q.id
		 WHERE qq.quiz_id = $1
		 ORDER BY q.created_at`,
		quizID,
	)
	if err != nil {
		return nil, storeErr(err, "getting quiz questions")
	}
	return qsts, nil
}

func (repo quizRepository) QueryAllQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var quizzes []quiz.Quiz
	if err := repo.db.SelectContext(ctx, &quizzes, `SELECT * FROM quizzes ORDER BY created_at`); err != nil {
		return nil, storeErr(err, "querying quizzes")
	}
	return quizzes, nil
}

// Assignments

func (repo quizRepository) CreateAssignments(ctx context.Context, assignments []quiz.Assignment) ([]quiz.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, asg := range assignments {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO quiz_assignments (id, quiz_id, user_id, score_achieved, is_submitted, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			asg.ID, asg.QuizID, asg.UserID, asg.Score, asg.IsSubmitted, asg.IsActive, asg.CreatedAt, asg.UpdatedAt,
		)
		if err != nil {
			if constraint, ok := uniqueViolation(err); ok && constraint == "quiz_assignments_quiz_user_uniq" {
				return nil, quiz.ErrAlreadyAssigned
			}
			return nil, storeErr(err, "creating assignment")
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, storeErr(err, "committing assignments")
	}
	return assignments, nil
}

func (repo quizRepository) GetAssignment(ctx context.Context, quizID, userID string) (quiz.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var asg quiz.Assignment
	err := repo.db.GetContext(
		ctx,
		&asg,
		`SELECT * FROM quiz_assignments WHERE quiz_id = $1 AND user_id = $2`,
		quizID, userID,
	)
	if err == sql.ErrNoRows {
		return quiz.Assignment{}, quiz.ErrAssignmentNotFound
	}
	if err != nil {
		return quiz.Assignment{}, storeErr(err, "getting assignment")
	}
	return asg, nil
}

func (repo quizRepository) QueryAssignmentsByUser(ctx context.Context, userID string) ([]quiz.AssignedQuiz, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var assigned []quiz.AssignedQuiz
	err := repo.db.SelectContext(
		ctx,
		&assigned,
		`SELECT qa.quiz_id AS quiz_id, qz.name AS quiz_name, qa.score_achieved AS score_achieved, qa.is_submitted AS is_submitted
		 FROM quiz_assignments qa
		 JOIN quizzes qz ON qz.id = qa.quiz_id
		 WHERE qa.user_id = $1
		 ORDER BY qa.created_at`,
		userID,
	)
	if err != nil {
		return nil, storeErr(err, "querying user assignments")
	}
	return assigned, nil
}

func (repo quizRepository) QueryAllAssignments(ctx context.Context) ([]quiz.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var assignments []quiz.Assignment
	err := repo.db.SelectContext(
		ctx,
		&assignments,
		`SELECT * FROM quiz_assignments
		 ORDER BY is_submitted DESC, score_achieved DESC, created_at ASC`,
	)
	if err != nil {
		return nil, storeErr(err, "querying assignments")
	}
	return assignments, nil
}

// SubmitAttempt transitions the assignment to its terminal submitted state
// and records the responses in one transaction. The conditional UPDATE on
// is_submitted serializes concurrent submissions of the same assignment: the
// loser sees zero affected rows and nothing of its attempt is persisted.
func (repo quizRepository) SubmitAttempt(ctx context.Context, asg quiz.Assignment, responses []quiz.Response) (quiz.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return quiz.Assignment{}, storeErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE quiz_assignments
		 SET score_achieved = $3, is_submitted = TRUE, is_active = FALSE, updated_at = $4
		 WHERE quiz_id = $1 AND user_id = $2 AND is_submitted = FALSE`,
		asg.QuizID, asg.UserID, asg.Score, asg.UpdatedAt,
	)
	if err != nil {
		return quiz.Assignment{}, storeErr(err, "submitting assignment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return quiz.Assignment{}, storeErr(err, "submitting assignment")
	}
	if n == 0 {
		return quiz.Assignment{}, quiz.ErrAlreadySubmitted
	}
	if n > 1 {
		return quiz.Assignment{}, errors.Wrap(
			core.NewShutdownError("assignment uniqueness violated"), "submitting assignment",
		)
	}

	for _, resp := range responses {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO user_responses (id, quiz_id, user_id, question_id, choice, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			resp.ID, resp.QuizID, resp.UserID, resp.QuestionID, resp.Choice, resp.CreatedAt,
		)
		if err != nil {
			return quiz.Assignment{}, storeErr(err, "recording response")
		}
	}

	if err = tx.Commit(); err != nil {
		return quiz.Assignment{}, storeErr(err, "committing attempt")
	}
	return asg, nil
}
