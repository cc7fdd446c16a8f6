package controller

import (
	"time"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/repository"
	"school_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SchoolController 班级、科目、选课与用户的管理端 CRUD
type SchoolController struct {
	School *repository.SchoolRepository
	Users  *repository.UserRepository
}

func NewSchoolController(school *repository.SchoolRepository, users *repository.UserRepository) *SchoolController {
	return &SchoolController{School: school, Users: users}
}

type ClassRequest struct {
	Name         string `json:"name" binding:"required"`
	AcademicYear string `json:"academicYear"`
	Description  string `json:"description"`
}

// CreateClass godoc
// @Summary 创建班级
// @Tags 学校
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ClassRequest true "班级信息"
// @Success 201 {object} util.Response{data=model.Class} "创建成功"
// @Router /api/classes [post]
func (c *SchoolController) CreateClass(ctx *gin.Context) {
	var req ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class := &model.Class{Name: req.Name, AcademicYear: req.AcademicYear, Description: req.Description}
	if err := c.School.CreateClass(class); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// ListClasses godoc
// @Summary 班级列表
// @Tags 学校
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.PageResponse "成功"
// @Router /api/classes [get]
func (c *SchoolController) ListClasses(ctx *gin.Context) {
	page := int(util.MustParseUint(ctx.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "20")))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	classes, total, err := c.School.ListClasses(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, classes, total, page, limit)
}

type SubjectRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// CreateSubject godoc
// @Summary 创建科目
// @Tags 学校
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body SubjectRequest true "科目信息"
// @Success 201 {object} util.Response{data=model.Subject} "创建成功"
// @Router /api/subjects [post]
func (c *SchoolController) CreateSubject(ctx *gin.Context) {
	var req SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject := &model.Subject{Name: req.Name, Code: req.Code}
	if err := c.School.CreateSubject(subject); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// ListSubjects godoc
// @Summary 科目列表
// @Tags 学校
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject} "成功"
// @Router /api/subjects [get]
func (c *SchoolController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.School.ListSubjects()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

type EnrollRequest struct {
	StudentID uint `json:"studentId" binding:"required"`
}

// EnrollStudent godoc
// @Summary 学生入班
// @Tags 学校
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   body body EnrollRequest true "学生信息"
// @Success 201 {object} util.Response{data=model.Enrollment} "创建成功"
// @Router /api/classes/{classId}/enrollments [post]
func (c *SchoolController) EnrollStudent(ctx *gin.Context) {
	classID := util.MustParseUint(ctx.Param("classId"))

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment := &model.Enrollment{
		StudentID:  req.StudentID,
		ClassID:    classID,
		EnrolledAt: time.Now(),
	}
	if err := c.School.CreateEnrollment(enrollment); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// ListEnrollments godoc
// @Summary 班级学生列表
// @Tags 学校
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Success 200 {object} util.Response{data=[]model.Enrollment} "成功"
// @Router /api/classes/{classId}/enrollments [get]
func (c *SchoolController) ListEnrollments(ctx *gin.Context) {
	classID := util.MustParseUint(ctx.Param("classId"))

	enrollments, err := c.School.ListEnrollmentsByClass(classID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// UnenrollStudent godoc
// @Summary 学生退班
// @Tags 学校
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   enrollmentId path int true "选课ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/classes/{classId}/enrollments/{enrollmentId} [delete]
func (c *SchoolController) UnenrollStudent(ctx *gin.Context) {
	classID := util.MustParseUint(ctx.Param("classId"))
	enrollmentID := util.MustParseUint(ctx.Param("enrollmentId"))

	enrollment, err := c.School.FindEnrollmentByID(enrollmentID)
	if err != nil || enrollment.ClassID != classID {
		util.DomainError(ctx, util.ErrEnrollmentNotFound)
		return
	}
	if err := c.School.DeleteEnrollment(enrollment.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListUsers godoc
// @Summary 用户列表
// @Tags 学校
// @Produce  json
// @Security BearerAuth
// @Param   role query string false "角色过滤 student/teacher/admin"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.PageResponse "成功"
// @Router /api/users [get]
func (c *SchoolController) ListUsers(ctx *gin.Context) {
	page := int(util.MustParseUint(ctx.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "20")))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	role := model.UserRole(ctx.Query("role"))
	users, total, err := c.Users.List(role, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, users, total, page, limit)
}
