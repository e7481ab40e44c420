package quiz

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/user"
)

var (
	ErrQuestionNotFound   = errors.New("question not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrNotAssigned        = errors.New("user is not assigned to this quiz")
	ErrAlreadyAssigned    = errors.New("user is already assigned to this quiz")
	ErrAlreadySubmitted   = errors.New("quiz has already been submitted")
)

type (
	Repository interface {
		CreateQuestion(ctx context.Context, qst Question) (Question, error)
		GetQuestionsByID(ctx context.Context, ids []string) ([]Question, error)
		QueryAllQuestions(ctx context.Context) ([]Question, error)

		// CreateQuiz persists the quiz and its question links atomically:
		// on failure no link is left behind.
		CreateQuiz(ctx context.Context, qz Quiz, links []QuizQuestion) (Quiz, error)
		GetQuizByID(ctx context.Context, id string) (Quiz, error)
		GetQuizQuestions(ctx context.Context, quizID string) ([]Question, error)
		QueryAllQuizzes(ctx context.Context) ([]Quiz, error)

		// CreateAssignments persists the batch atomically; a duplicate
		// (quiz, user) pair fails the whole batch with ErrAlreadyAssigned.
		CreateAssignments(ctx context.Context, assignments []Assignment) ([]Assignment, error)
		GetAssignment(ctx context.Context, quizID, userID string) (Assignment, error)
		QueryAssignmentsByUser(ctx context.Context, userID string) ([]AssignedQuiz, error)
		// QueryAllAssignments returns assignments ordered by
		// (is_submitted DESC, score_achieved DESC, created_at ASC).
		QueryAllAssignments(ctx context.Context) ([]Assignment, error)

		// SubmitAttempt persists the responses and the submitted assignment in
		// one transaction. The assignment transitions at most once: a
		// concurrent submission of the same assignment fails with
		// ErrAlreadySubmitted and leaves no responses behind.
		SubmitAttempt(ctx context.Context, asg Assignment, responses []Response) (Assignment, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) *Service {
	return &Service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
	}
}

// Catalog

func (svc *Service) AddQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	now := time.Now().UTC()
	qst := Question{
		ID:        uuid.New().String(),
		Question:  nq.Question,
		Choice1:   nq.Choice1,
		Choice2:   nq.Choice2,
		Choice3:   nq.Choice3,
		Choice4:   nq.Choice4,
		Answer:    nq.Answer,
		Marks:     nq.Marks,
		Remarks:   nq.Remarks,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateQuestion(ctx, qst)
}

func (svc *Service) QueryAllQuestions(ctx context.Context) ([]Question, error) {
	return svc.repo.QueryAllQuestions(ctx)
}

func (svc *Service) CreateQuiz(ctx context.Context, nq NewQuiz) (Quiz, error) {
	qsts, err := svc.repo.GetQuestionsByID(ctx, nq.QuestionIDs)
	if err != nil {
		return Quiz{}, err
	}
	if len(qsts) != len(nq.QuestionIDs) {
		return Quiz{}, ErrQuestionNotFound
	}

	now := time.Now().UTC()
	qz := Quiz{
		ID:        uuid.New().String(),
		Name:      nq.Name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	links := make([]QuizQuestion, 0, len(nq.QuestionIDs))
	for _, qstID := range nq.QuestionIDs {
		links = append(links, QuizQuestion{
			ID:         uuid.New().String(),
			QuizID:     qz.ID,
			QuestionID: qstID,
		})
	}
	return svc.repo.CreateQuiz(ctx, qz, links)
}

func (svc *Service) QueryAllQuizzes(ctx context.Context) ([]Quiz, error) {
	return svc.repo.QueryAllQuizzes(ctx)
}

// ViewQuiz returns the quiz's questions with the answer index redacted.
// Admins and assignees only.
func (svc *Service) ViewQuiz(ctx context.Context, actor Actor, quizID string) ([]QuestionView, error) {
	qz, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		if _, err = svc.repo.GetAssignment(ctx, qz.ID, actor.UserID); err != nil {
			if errors.Cause(err) == ErrAssignmentNotFound {
				return nil, ErrNotAssigned
			}
			return nil, err
		}
	}

	qsts, err := svc.repo.GetQuizQuestions(ctx, qz.ID)
	if err != nil {
		return nil, err
	}
	views := make([]QuestionView, 0, len(qsts))
	for _, qst := range qsts {
		views = append(views, QuestionView{
			QuizName:   qz.Name,
			QuestionID: qst.ID,
			Question:   qst.Question,
			Choice1:    qst.Choice1,
			Choice2:    qst.Choice2,
			Choice3:    qst.Choice3,
			Choice4:    qst.Choice4,
			Marks:      qst.Marks,
			Remarks:    qst.Remarks,
		})
	}
	return views, nil
}

// Assignments

// Assign binds the quiz to each user in the batch; all rows commit or none
// do. Assigned users with an email address are notified.
func (svc *Service) Assign(ctx context.Context, quizID string, aq AssignQuiz) ([]Assignment, error) {
	qz, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	usrs, err := svc.usrRepo.GetUsersByID(ctx, aq.UserIDs)
	if err != nil {
		return nil, err
	}
	if len(usrs) != len(aq.UserIDs) {
		return nil, user.ErrNotFound
	}

	now := time.Now().UTC()
	assignments := make([]Assignment, 0, len(usrs))
	for _, usr := range usrs {
		assignments = append(assignments, Assignment{
			ID:        uuid.New().String(),
			QuizID:    qz.ID,
			UserID:    usr.ID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	assignments, err = svc.repo.CreateAssignments(ctx, assignments)
	if err != nil {
		return nil, err
	}

	svc.notifyAssigned(qz, usrs)
	return assignments, nil
}

func (svc *Service) notifyAssigned(qz Quiz, usrs []user.User) {
	if svc.mailSvc == nil {
		return
	}
	messages := make([]*core.EmailMessage, 0, len(usrs))
	for _, usr := range usrs {
		if usr.Email == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: fmt.Sprintf("Quiz %q has been assigned to you", qz.Name),
			Body: fmt.Sprintf(
				"Hi %s,\n\nThe quiz %q has been assigned to you. "+
					"Log in to view and attempt it; only one attempt is allowed.\n",
				usr.Name, qz.Name,
			),
		})
	}
	svc.mailSvc.SendMessages(messages...)
}

// AssignedTo lists the user's assignments with quiz names and attempt state.
func (svc *Service) AssignedTo(ctx context.Context, userID string) ([]AssignedQuiz, error) {
	return svc.repo.QueryAssignmentsByUser(ctx, userID)
}

// AllResults is the admin result board: every assignment, attempted ones
// first, best scores on top.
func (svc *Service) AllResults(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

// Attempt engine

// AttemptQuiz validates the actor's authorization for the quiz, records one
// response per answered question, computes the achieved score and transitions
// the assignment to its terminal submitted state, all in one transaction.
func (svc *Service) AttemptQuiz(ctx context.Context, actor Actor, quizID string, at Attempt) (ScoreResult, error) {
	qz, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return ScoreResult{}, err
	}

	// the assignment is keyed by (quiz, user): the actor can only ever
	// submit their own assignment.
	asg, err := svc.repo.GetAssignment(ctx, qz.ID, actor.UserID)
	if err != nil {
		if errors.Cause(err) == ErrAssignmentNotFound {
			return ScoreResult{}, ErrNotAssigned
		}
		return ScoreResult{}, err
	}
	if asg.IsSubmitted {
		return ScoreResult{}, ErrAlreadySubmitted
	}

	qsts, err := svc.repo.GetQuizQuestions(ctx, qz.ID)
	if err != nil {
		return ScoreResult{}, err
	}
	lookup := make(map[string]Question, len(qsts))
	for _, qst := range qsts {
		lookup[qst.ID] = qst
	}

	now := time.Now().UTC()
	score := 0
	responses := make([]Response, 0, len(at.Responses))
	for qstID, choice := range at.Responses {
		qst, ok := lookup[qstID]
		if !ok {
			return ScoreResult{}, core.NewValidationError(
				errors.Errorf("question %s is not part of this quiz", qstID),
				core.FieldError{Field: "responses", Error: "unknown question id: " + qstID},
			)
		}
		responses = append(responses, Response{
			ID:         uuid.New().String(),
			QuizID:     qz.ID,
			UserID:     actor.UserID,
			QuestionID: qstID,
			Choice:     choice,
			CreatedAt:  now,
		})
		if choice == qst.Answer {
			score += qst.Marks
		}
	}

	// unanswered questions contribute zero
	asg.Score += score
	asg.IsSubmitted = true
	asg.IsActive = false
	asg.UpdatedAt = now

	asg, err = svc.repo.SubmitAttempt(ctx, asg, responses)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{
		QuizID:      asg.QuizID,
		Score:       asg.Score,
		IsSubmitted: asg.IsSubmitted,
		SubmittedAt: asg.UpdatedAt,
	}, nil
}
