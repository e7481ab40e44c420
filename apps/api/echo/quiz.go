package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/quiz"
)

type quizApi struct {
	svc *quiz.Service
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *quiz.Service) {
	api := quizApi{svc: svc}

	// question bank & quiz authoring are admin-only
	qg := g.Group("/questions", jwt, adminMiddleware())
	qg.POST("", api.createQuestion)
	qg.GET("", api.queryQuestions)

	zg := g.Group("/quizzes", jwt)
	zg.POST("", api.createQuiz, adminMiddleware())
	zg.GET("", api.queryQuizzes, adminMiddleware())
	zg.GET("/:id", api.viewQuiz)
	zg.POST("/:id/assignments", api.assign, adminMiddleware())
	zg.POST("/:id/attempt", api.attempt)

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.queryOwnAssignments)
	ag.GET("/results", api.queryResults, adminMiddleware())
}

// Handlers

func (api *quizApi) createQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	qst, err := api.svc.AddQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, qst)
}

func (api *quizApi) queryQuestions(ctx echo.Context) error {
	qsts, err := api.svc.QueryAllQuestions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if qsts == nil {
		qsts = []quiz.Question{}
	}
	return ctx.JSON(http.StatusOK, qsts)
}

func (api *quizApi) createQuiz(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	qz, err := api.svc.CreateQuiz(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == quiz.ErrQuestionNotFound {
			return err
		}
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *quizApi) queryQuizzes(ctx echo.Context) error {
	quizzes, err := api.svc.QueryAllQuizzes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) viewQuiz(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	views, err := api.svc.ViewQuiz(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	if views == nil {
		views = []quiz.QuestionView{}
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *quizApi) assign(ctx echo.Context) error {
	var data quiz.AssignQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignQuiz")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	assignments, err := api.svc.Assign(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, assignments)
}

func (api *quizApi) attempt(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data quiz.Attempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Attempt")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res, err := api.svc.AttemptQuiz(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizApi) queryOwnAssignments(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	assigned, err := api.svc.AssignedTo(ctx.Request().Context(), actor.UserID)
	if err != nil {
		return errors.Wrap(err, "querying user assignments")
	}
	if assigned == nil {
		assigned = []quiz.AssignedQuiz{}
	}
	return ctx.JSON(http.StatusOK, assigned)
}

func (api *quizApi) queryResults(ctx echo.Context) error {
	results, err := api.svc.AllResults(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []quiz.Assignment{}
	}
	return ctx.JSON(http.StatusOK, results)
}
