package app

import (
	"school_assess_backend/docs"
	"school_assess_backend/internal/config"
	"school_assess_backend/internal/middleware"
	"school_assess_backend/internal/model"

	"school_assess_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.PUT("/me", c.auth.UpdateMe)

	// 测评与作答
	rg.GET("/assessments/:assessmentId", c.assessment.Get)
	rg.GET("/assignments", c.assignment.ListMine)
	rg.POST("/assessments/:assessmentId/start", c.assignment.Start)
	rg.PUT("/assessments/:assessmentId/questions/:questionId/answer", c.assignment.SaveAnswer)
	rg.POST("/assessments/:assessmentId/questions/:questionId/answer/file", c.assignment.UploadAnswerFile)
	rg.POST("/assessments/:assessmentId/submit", c.assignment.Submit)
	rg.POST("/assessments/:assessmentId/violations", c.assignment.ReportViolation)

	// 成绩查询
	rg.GET("/classes/:classId/subjects/:subjectId/average", c.grade.SubjectAverage)
	rg.GET("/classes/:classId/report-card", c.grade.ReportCard)
	rg.GET("/classes/:classId/subjects/:subjectId/teacher", c.teaching.CurrentTeacher)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		// 测评管理
		teacher.GET("/teacher/assessments", c.assessment.ListMine)
		teacher.POST("/assessments", c.assessment.Create)
		teacher.PUT("/assessments/:assessmentId", c.assessment.Update)
		teacher.DELETE("/assessments/:assessmentId", c.assessment.Delete)
		teacher.POST("/assessments/:assessmentId/publish", c.assessment.Publish)
		teacher.POST("/assessments/:assessmentId/questions", c.assessment.AddQuestion)
		teacher.PUT("/assessments/:assessmentId/questions/:questionId", c.assessment.UpdateQuestion)
		teacher.DELETE("/assessments/:assessmentId/questions/:questionId", c.assessment.DeleteQuestion)

		// 批改
		teacher.GET("/assessments/:assessmentId/pending", c.assignment.ListPendingGrading)
		teacher.GET("/assessments/:assessmentId/results", c.grade.ClassResults)
		teacher.GET("/assignments/:id", c.assignment.GetDetail)
		teacher.POST("/assignments/:id/questions/:questionId/grade", c.assignment.GradeAnswer)
		teacher.POST("/assignments/:id/finalize", c.assignment.FinalizeGrading)
		teacher.POST("/assignments/:id/reopen", c.assignment.Reopen)
		teacher.POST("/assignments/:id/reassign", c.assignment.Reassign)

		// 任课
		teacher.GET("/teacher/workload", c.teaching.MyWorkload)
		teacher.GET("/classes/:classId/subjects/:subjectId/teacher/history", c.teaching.History)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/classes", c.school.CreateClass)
		admin.GET("/classes", c.school.ListClasses)
		admin.POST("/subjects", c.school.CreateSubject)
		admin.GET("/subjects", c.school.ListSubjects)
		admin.POST("/classes/:classId/enrollments", c.school.EnrollStudent)
		admin.GET("/classes/:classId/enrollments", c.school.ListEnrollments)
		admin.DELETE("/classes/:classId/enrollments/:enrollmentId", c.school.UnenrollStudent)
		admin.GET("/users", c.school.ListUsers)
		admin.PUT("/classes/:classId/subjects/:subjectId/teacher", c.teaching.AssignTeacher)
	}
}
