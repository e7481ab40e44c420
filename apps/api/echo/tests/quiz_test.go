package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/mtihani/core/quiz"
	testutil "github.com/trezcool/mtihani/tests"
)

func Test_quizApi_createQuestion(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", false, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", true, true)

	valid := quiz.NewQuestion{
		Question: "2 + 2 ?",
		Choice1:  "3",
		Choice2:  "4",
		Choice3:  "5",
		Choice4:  "6",
		Answer:   2,
		Marks:    5,
	}
	badAnswer := valid
	badAnswer.Answer = 7

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, body: marchallObj(t, valid), wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, usr), wantCode: http.StatusForbidden, body: marchallObj(t, valid), wantData: marchallObj(t, errForbidden)},
		{name: "Answer out of range", token: getToken(t, admin), wantCode: http.StatusBadRequest, body: marchallObj(t, badAnswer)},
		{name: "Created", token: getToken(t, admin), wantCode: http.StatusCreated, body: marchallObj(t, valid)},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/questions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_quizApi_createQuiz(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", true, true)
	q1 := testutil.CreateQuestion(t, quizRepo, "q1", 1, 4)
	q2 := testutil.CreateQuestion(t, quizRepo, "q2", 2, 2)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "required fields", token: adminToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, quiz.NewQuiz{}),
		},
		{
			name: "unknown question", token: adminToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, quiz.NewQuiz{Name: "Broken", QuestionIDs: []string{q1.ID, "nope"}}),
			wantData: marchallObj(t, httpErr{Error: "question not found"}),
		},
		{
			name: "created", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, quiz.NewQuiz{Name: "Arithmetic", QuestionIDs: []string{q1.ID, q2.ID}}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/quizzes"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_quizApi_viewQuiz(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", false, true)
	stranger := testutil.CreateUser(t, usrRepo, "Stranger", "stranger", "stranger@test.cd", "", false, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", true, true)
	q1 := testutil.CreateQuestion(t, quizRepo, "2 + 2 ?", 2, 5)
	qz := testutil.CreateQuiz(t, quizRepo, "Arithmetic", q1)
	testutil.AssignQuiz(t, quizRepo, qz, usr)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/quizzes/" + qz.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Not assigned", path: "/v1/quizzes/" + qz.ID, token: getToken(t, stranger), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "user is not assigned to this quiz"}),
		},
		{
			name: "Unknown quiz", path: "/v1/quizzes/nope", token: getToken(t, admin), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "quiz not found"}),
		},
		{name: "Assignee", path: "/v1/quizzes/" + qz.ID, token: getToken(t, usr), wantCode: http.StatusOK},
		{name: "Admin", path: "/v1/quizzes/" + qz.ID, token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusOK {
				// the answer index never leaves the server
				if bytes.Contains(rec.Body.Bytes(), []byte(`"answer"`)) {
					t.Errorf("response leaks the answer index: %s", rec.Body.String())
				}
				var views []quiz.QuestionView
				if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if len(views) != 1 || views[0].QuestionID != q1.ID || views[0].QuizName != qz.Name {
					t.Errorf("views = %+v", views)
				}
			}
		})
	}
}

func Test_quizApi_assign(t *testing.T) {
	app := setup(t)

	usr1 := testutil.CreateUser(t, usrRepo, "One", "oneone", "one@test.cd", "", false, true)
	usr2 := testutil.CreateUser(t, usrRepo, "Two", "twotwo", "", "", false, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", true, true)
	q1 := testutil.CreateQuestion(t, quizRepo, "q1", 1, 4)
	qz := testutil.CreateQuiz(t, quizRepo, "Arithmetic", q1)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, body: marchallObj(t, quiz.AssignQuiz{UserIDs: []string{usr1.ID}}), wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, usr1), wantCode: http.StatusForbidden,
			body: marchallObj(t, quiz.AssignQuiz{UserIDs: []string{usr1.ID}}), wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unknown user", token: adminToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, quiz.AssignQuiz{UserIDs: []string{"nope"}}),
			wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "Assigned", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, quiz.AssignQuiz{UserIDs: []string{usr1.ID, usr2.ID}}),
		},
		{
			name: "Already assigned", token: adminToken, wantCode: http.StatusConflict,
			body:     marchallObj(t, quiz.AssignQuiz{UserIDs: []string{usr1.ID}}),
			wantData: marchallObj(t, httpErr{Error: "user is already assigned to this quiz"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/quizzes/" + qz.ID + "/assignments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	// only usr1 has an email address
	if got := len(mailSvc.SentMessages()); got != 1 {
		t.Errorf("sent messages = %d, want 1", got)
	}
}

func Test_quizApi_attempt(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", false, true)
	stranger := testutil.CreateUser(t, usrRepo, "Stranger", "stranger", "", "", false, true)
	q1 := testutil.CreateQuestion(t, quizRepo, "2 + 2 ?", 2, 5)
	q2 := testutil.CreateQuestion(t, quizRepo, "3 x 3 ?", 1, 3)
	qz := testutil.CreateQuiz(t, quizRepo, "Arithmetic", q1, q2)
	testutil.AssignQuiz(t, quizRepo, qz, usr)

	attempt := quiz.Attempt{Responses: map[string]int{q1.ID: 2, q2.ID: 4}}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, body: marchallObj(t, attempt), wantData: marchallObj(t, errMissingToken)},
		{
			name: "Not assigned", token: getToken(t, stranger), wantCode: http.StatusForbidden,
			body: marchallObj(t, attempt), wantData: marchallObj(t, httpErr{Error: "user is not assigned to this quiz"}),
		},
		{
			name: "Empty responses", token: getToken(t, usr), wantCode: http.StatusBadRequest,
			body: marchallObj(t, quiz.Attempt{}),
		},
		{
			name: "Choice out of range", token: getToken(t, usr), wantCode: http.StatusBadRequest,
			body: marchallObj(t, quiz.Attempt{Responses: map[string]int{q1.ID: 7}}),
		},
		{
			name: "Unknown question", token: getToken(t, usr), wantCode: http.StatusBadRequest,
			body: marchallObj(t, quiz.Attempt{Responses: map[string]int{"nope": 1}}),
		},
		{name: "Submitted", token: getToken(t, usr), wantCode: http.StatusOK, body: marchallObj(t, attempt)},
		{
			name: "Already submitted", token: getToken(t, usr), wantCode: http.StatusConflict,
			body: marchallObj(t, attempt), wantData: marchallObj(t, httpErr{Error: "quiz has already been submitted"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/quizzes/" + qz.ID + "/attempt"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusOK {
				var res quiz.ScoreResult
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if res.Score != 5 {
					t.Errorf("Score = %d, want 5", res.Score)
				}
				if !res.IsSubmitted {
					t.Error("expected result to be submitted")
				}
			}
		})
	}
}

func Test_quizApi_assignments(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", false, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "", "", false, true)
	q1 := testutil.CreateQuestion(t, quizRepo, "q1", 1, 4)
	qz := testutil.CreateQuiz(t, quizRepo, "Arithmetic", q1)
	testutil.AssignQuiz(t, quizRepo, qz, usr)
	testutil.AssignQuiz(t, quizRepo, qz, other)

	req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", getToken(t, usr))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var assigned []quiz.AssignedQuiz
	if err := json.Unmarshal(rec.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	// only own assignments are listed
	if len(assigned) != 1 || assigned[0].QuizID != qz.ID || assigned[0].QuizName != qz.Name {
		t.Errorf("assigned = %+v", assigned)
	}
}

func Test_quizApi_results(t *testing.T) {
	app := setup(t)

	usr1 := testutil.CreateUser(t, usrRepo, "One", "oneone", "", "", false, true)
	usr2 := testutil.CreateUser(t, usrRepo, "Two", "twotwo", "", "", false, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", true, true)
	q1 := testutil.CreateQuestion(t, quizRepo, "q1", 1, 5)
	qz := testutil.CreateQuiz(t, quizRepo, "Board", q1)
	testutil.AssignQuiz(t, quizRepo, qz, usr1, usr2)

	// usr2 attempts and scores 5; usr1 never does
	req, rec := newAuthRequest(http.MethodPost, "/v1/quizzes/"+qz.ID+"/attempt", getToken(t, usr2),
		marchallObj(t, quiz.Attempt{Responses: map[string]int{q1.ID: 1}}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("attempt failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, usr1), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "All results", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/assignments/results"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusOK {
				var results []quiz.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				// attempted rows come first
				if len(results) != 2 || results[0].UserID != usr2.ID || !results[0].IsSubmitted {
					t.Errorf("results = %+v", results)
				}
			}
		})
	}
}
