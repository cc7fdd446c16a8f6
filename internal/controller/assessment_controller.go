package controller

import (
	"school_assess_backend/internal/model"
	"school_assess_backend/internal/service"
	"school_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Assessments *service.AssessmentService
}

func NewAssessmentController(assessments *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Assessments: assessments}
}

// Create godoc
// @Summary 创建测评
// @Tags 测评
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.AssessmentInput true "测评信息"
// @Success 201 {object} util.Response{data=model.Assessment} "创建成功"
// @Failure 403 {object} util.Response "非该班级科目的任课教师"
// @Router /api/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var in service.AssessmentInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assessments.Create(claims.UserID, in)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// Update godoc
// @Summary 更新测评
// @Description 已发布的测评不可修改
// @Tags 测评
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   body body service.AssessmentInput true "测评信息"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Failure 409 {object} util.Response "测评已发布"
// @Router /api/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	var in service.AssessmentInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assessments.Update(claims.UserID, id, in)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Delete godoc
// @Summary 删除测评
// @Tags 测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.Assessments.Delete(claims.UserID, id); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Publish godoc
// @Summary 发布测评
// @Description 发布后学生可见，且测评内容冻结
// @Tags 测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Failure 400 {object} util.Response "测评没有题目"
// @Router /api/assessments/{id}/publish [post]
func (c *AssessmentController) Publish(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	a, err := c.Assessments.Publish(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// ListMine godoc
// @Summary 教师测评列表
// @Description 返回当前教师所持班级科目下的全部测评
// @Tags 测评
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Assessment} "成功"
// @Router /api/teacher/assessments [get]
func (c *AssessmentController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	list, err := c.Assessments.ListForTeacher(claims.UserID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 测评详情
// @Description 教师视角返回完整答案，学生视角剥离 is_correct 与解析
// @Tags 测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	if claims.Role == model.Student {
		view, err := c.Assessments.GetForStudent(claims.UserID, id)
		if err != nil {
			util.DomainError(ctx, err)
			return
		}
		util.Success(ctx, view)
		return
	}

	a, err := c.Assessments.GetForTeacher(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// AddQuestion godoc
// @Summary 添加题目
// @Tags 测评
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   body body service.QuestionInput true "题目信息"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 422 {object} util.Response "题目不满足题型约束"
// @Router /api/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Assessments.AddQuestion(claims.UserID, id, in)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 测评
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   questionId path int true "题目ID"
// @Param   body body service.QuestionInput true "题目信息"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/assessments/{id}/questions/{questionId} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))

	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Assessments.UpdateQuestion(claims.UserID, id, questionID, in)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/assessments/{id}/questions/{questionId} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))

	if err := c.Assessments.DeleteQuestion(claims.UserID, id, questionID); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
