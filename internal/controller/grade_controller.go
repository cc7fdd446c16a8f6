package controller

import (
	"school_assess_backend/internal/service"
	"school_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	Grades *service.GradeService
}

func NewGradeController(grades *service.GradeService) *GradeController {
	return &GradeController{Grades: grades}
}

// SubjectAverage godoc
// @Summary 学生单科平均分
// @Description 仅统计已批改作业；没有任何已批改作业时 average 为 null
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   subjectId path int true "科目ID"
// @Param   studentId query int false "学生ID（教师查询他人时使用）"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/classes/{classId}/subjects/{subjectId}/average [get]
func (c *GradeController) SubjectAverage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	classID := util.MustParseUint(ctx.Param("classId"))
	subjectID := util.MustParseUint(ctx.Param("subjectId"))

	studentID := claims.UserID
	if q := ctx.Query("studentId"); q != "" {
		studentID = util.MustParseUint(q)
		if studentID != claims.UserID && claims.Role == "student" {
			util.Forbidden(ctx)
			return
		}
	}

	avg, err := c.Grades.SubjectAverage(ctx.Request.Context(), studentID, classID, subjectID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}

	resp := gin.H{"average": nil}
	if avg != nil {
		resp["average"] = util.Round2(*avg)
	}
	util.Success(ctx, resp)
}

// ReportCard godoc
// @Summary 学生成绩单
// @Description 按班级汇总学生每个科目的平均分与当前任课教师
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   studentId query int false "学生ID（教师查询他人时使用）"
// @Success 200 {object} util.Response{data=service.ReportCard} "成功"
// @Router /api/classes/{classId}/report-card [get]
func (c *GradeController) ReportCard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	classID := util.MustParseUint(ctx.Param("classId"))

	studentID := claims.UserID
	if q := ctx.Query("studentId"); q != "" {
		studentID = util.MustParseUint(q)
		if studentID != claims.UserID && claims.Role == "student" {
			util.Forbidden(ctx)
			return
		}
	}

	card, err := c.Grades.StudentReportCard(ctx.Request.Context(), studentID, classID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, card)
}

// ClassResults godoc
// @Summary 测评班级成绩表
// @Description 教师视角，列出全班每个学生的状态与成绩及统计
// @Tags 成绩
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Success 200 {object} util.Response{data=service.ClassResults} "成功"
// @Router /api/assessments/{assessmentId}/results [get]
func (c *GradeController) ClassResults(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))

	results, err := c.Grades.ClassAssessmentResults(assessmentID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, results)
}
