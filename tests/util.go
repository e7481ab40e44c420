package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mtihani/core/quiz"
	"github.com/trezcool/mtihani/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	isAdmin, isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		IsAdmin:   isAdmin,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateQuestion(
	t *testing.T,
	repo quiz.Repository,
	question string,
	answer, marks int,
) quiz.Question {
	t.Helper()

	now := time.Now().UTC()
	qst := quiz.Question{
		ID:        uuid.New().String(),
		Question:  question,
		Choice1:   "A",
		Choice2:   "B",
		Choice3:   "C",
		Choice4:   "D",
		Answer:    answer,
		Marks:     marks,
		CreatedAt: now,
		UpdatedAt: now,
	}
	qst, err := repo.CreateQuestion(context.Background(), qst)
	if err != nil {
		t.Fatalf("CreateQuestion() failed: %v", err)
	}
	return qst
}

func CreateQuiz(t *testing.T, repo quiz.Repository, name string, qsts ...quiz.Question) quiz.Quiz {
	t.Helper()

	now := time.Now().UTC()
	qz := quiz.Quiz{
		ID:        uuid.New().String(),
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	links := make([]quiz.QuizQuestion, 0, len(qsts))
	for _, qst := range qsts {
		links = append(links, quiz.QuizQuestion{
			ID:         uuid.New().String(),
			QuizID:     qz.ID,
			QuestionID: qst.ID,
		})
	}
	qz, err := repo.CreateQuiz(context.Background(), qz, links)
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}

func AssignQuiz(t *testing.T, repo quiz.Repository, qz quiz.Quiz, usrs ...user.User) []quiz.Assignment {
	t.Helper()

	now := time.Now().UTC()
	assignments := make([]quiz.Assignment, 0, len(usrs))
	for _, usr := range usrs {
		assignments = append(assignments, quiz.Assignment{
			ID:        uuid.New().String(),
			QuizID:    qz.ID,
			UserID:    usr.ID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	assignments, err := repo.CreateAssignments(context.Background(), assignments)
	if err != nil {
		t.Fatalf("AssignQuiz() failed: %v", err)
	}
	return assignments
}
