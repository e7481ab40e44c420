package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/mtihani/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db}
}

// Questions

func (repo quizRepository) CreateQuestion(_ context.Context, qst quiz.Question) (quiz.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.questions = append(repo.db.questions, qst)
	return qst, nil
}

func (repo quizRepository) GetQuestionsByID(_ context.Context, ids []string) ([]quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	qsts := make([]quiz.Question, 0, len(ids))
	for _, qst := range repo.db.questions {
		if wanted[qst.ID] {
			qsts = append(qsts, qst)
		}
	}
	return qsts, nil
}

func (repo quizRepository) QueryAllQuestions(_ context.Context) ([]quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	qsts := make([]quiz.Question, len(repo.db.questions))
	copy(qsts, repo.db.questions)
	return qsts, nil
}

// Quizzes

func (repo quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz, links []quiz.QuizQuestion) (quiz.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// single writer lock: quiz + links land together or not at all
	repo.db.quizzes = append(repo.db.quizzes, qz)
	repo.db.links = append(repo.db.links, links...)
	return qz, nil
}

func (repo quizRepository) GetQuizByID(_ context.Context, id string) (quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.getQuiz(id)
}

func (repo quizRepository) getQuiz(id string) (quiz.Quiz, error) {
	for _, qz := range repo.db.quizzes {
		if qz.ID == id {
			return qz, nil
		}
	}
	return quiz.Quiz{}, quiz.ErrQuizNotFound
}

func (repo quizRepository) GetQuizQuestions(_ context.Context, quizID string) ([]quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	linked := make(map[string]bool)
	for _, link := range repo.db.links {
		if link.QuizID == quizID {
			linked[link.QuestionID] = true
		}
	}
	qsts := make([]quiz.Question, 0, len(linked))
	for _, qst := range repo.db.questions {
		if linked[qst.ID] {
			qsts = append(qsts, qst)
		}
	}
	return qsts, nil
}

func (repo quizRepository) QueryAllQuizzes(_ context.Context) ([]quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	quizzes := make([]quiz.Quiz, len(repo.db.quizzes))
	copy(quizzes, repo.db.quizzes)
	return quizzes, nil
}

// Assignments

func (repo quizRepository) CreateAssignments(_ context.Context, assignments []quiz.Assignment) ([]quiz.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// check the whole batch before touching anything: all rows or none
	for _, asg := range assignments {
		for _, existing := range repo.db.assignments {
			if existing.QuizID == asg.QuizID && existing.UserID == asg.UserID {
				return nil, quiz.ErrAlreadyAssigned
			}
		}
	}
	repo.db.assignments = append(repo.db.assignments, assignments...)
	return assignments, nil
}

func (repo quizRepository) GetAssignment(_ context.Context, quizID, userID string) (quiz.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, asg := range repo.db.assignments {
		if asg.QuizID == quizID && asg.UserID == userID {
			return asg, nil
		}
	}
	return quiz.Assignment{}, quiz.ErrAssignmentNotFound
}

func (repo quizRepository) QueryAssignmentsByUser(_ context.Context, userID string) ([]quiz.AssignedQuiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assigned := make([]quiz.AssignedQuiz, 0)
	for _, asg := range repo.db.assignments {
		if asg.UserID != userID {
			continue
		}
		qz, err := repo.getQuiz(asg.QuizID)
		if err != nil {
			return nil, err
		}
		assigned = append(assigned, quiz.AssignedQuiz{
			QuizID:      asg.QuizID,
			QuizName:    qz.Name,
			Score:       asg.Score,
			IsSubmitted: asg.IsSubmitted,
		})
	}
	return assigned, nil
}

func (repo quizRepository) QueryAllAssignments(_ context.Context) ([]quiz.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]quiz.Assignment, len(repo.db.assignments))
	copy(assignments, repo.db.assignments)

	// submitted first, best scores on top; insertion order breaks ties
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].IsSubmitted != assignments[j].IsSubmitted {
			return assignments[i].IsSubmitted
		}
		return assignments[i].Score > assignments[j].Score
	})
	return assignments, nil
}

func (repo quizRepository) SubmitAttempt(_ context.Context, asg quiz.Assignment, responses []quiz.Response) (quiz.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.assignments {
		if existing.QuizID != asg.QuizID || existing.UserID != asg.UserID {
			continue
		}
		if existing.IsSubmitted {
			// a concurrent submission won; nothing of this attempt persists
			return quiz.Assignment{}, quiz.ErrAlreadySubmitted
		}
		repo.db.assignments[i] = asg
		repo.db.responses = append(repo.db.responses, responses...)
		return asg, nil
	}
	return quiz.Assignment{}, quiz.ErrAssignmentNotFound
}
