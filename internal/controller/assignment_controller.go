package controller

import (
	"school_assess_backend/internal/model"
	"school_assess_backend/internal/service"
	"school_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	Assignments *service.AssignmentService
	Storage     *service.StorageService
}

func NewAssignmentController(assignments *service.AssignmentService, storage *service.StorageService) *AssignmentController {
	return &AssignmentController{Assignments: assignments, Storage: storage}
}

// ListMine godoc
// @Summary 学生作业列表
// @Description 返回当前学生所有已发布测评对应的作业（含未开始的虚拟作业）
// @Tags 作业
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.StudentAssignmentView} "成功"
// @Router /api/assignments [get]
func (c *AssignmentController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	views, err := c.Assignments.ListStudentAssignments(claims.UserID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// Start godoc
// @Summary 开始作答
// @Description 学生首次交互，作业进入 in_progress 状态
// @Tags 作业
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/assessments/{assessmentId}/start [post]
func (c *AssignmentController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))

	a, err := c.Assignments.Start(claims.UserID, assessmentID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// SaveAnswer godoc
// @Summary 保存单题答案
// @Description 答案按 (作业, 题目) 去重保存，重复保存覆盖旧答案
// @Tags 作业
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Param   questionId path int true "题目ID"
// @Param   body body service.AnswerPayload true "答案内容"
// @Success 200 {object} util.Response{data=model.Answer} "成功"
// @Failure 409 {object} util.Response "已提交，禁止修改"
// @Failure 422 {object} util.Response "答案形状与题型不符"
// @Router /api/assessments/{assessmentId}/questions/{questionId}/answer [put]
func (c *AssignmentController) SaveAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))
	questionID := util.MustParseUint(ctx.Param("questionId"))

	var payload service.AnswerPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ans, err := c.Assignments.RecordAnswer(claims.UserID, assessmentID, questionID, payload)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, ans)
}

// UploadAnswerFile godoc
// @Summary 上传文件答案
// @Description 上传 file_upload 题型的附件并保存为答案
// @Tags 作业
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Param   questionId path int true "题目ID"
// @Param   file formData file true "附件"
// @Success 200 {object} util.Response{data=model.Answer} "成功"
// @Failure 400 {object} util.Response "文件类型或大小不合法"
// @Router /api/assessments/{assessmentId}/questions/{questionId}/answer/file [post]
func (c *AssignmentController) UploadAnswerFile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))
	questionID := util.MustParseUint(ctx.Param("questionId"))

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	// 深度校验 MIME（不信任扩展名和请求头）
	sniff, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	mimeType, err := util.ValidateMimeType(sniff, []string{
		util.MimeImage, util.MimePDF, util.MimeText, util.MimeOctetStream,
	})
	sniff.Close()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.Storage.UploadAnswerFile(ctx.Request.Context(),
		assessmentID, questionID, file.Filename, src, file.Size, mimeType)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ans, err := c.Assignments.RecordAnswer(claims.UserID, assessmentID, questionID,
		service.AnswerPayload{FileURL: url})
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, ans)
}

// Submit godoc
// @Summary 提交作业
// @Description 提交为单向操作，提交后自动判分客观题
// @Tags 作业
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/assessments/{assessmentId}/submit [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))

	a, err := c.Assignments.Submit(claims.UserID, assessmentID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

type ViolationRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// ReportViolation godoc
// @Summary 上报监考违规
// @Description 监考客户端上报违规后，当前答案快照被强制提交
// @Tags 作业
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Param   body body ViolationRequest true "违规标签"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 400 {object} util.Response "未知违规标签"
// @Router /api/assessments/{assessmentId}/violations [post]
func (c *AssignmentController) ReportViolation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))

	var req ViolationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assignments.ReportViolation(claims.UserID, assessmentID, model.ViolationTag(req.Tag))
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// GetDetail godoc
// @Summary 作业详情（批改视图）
// @Tags 批改
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作业ID"
// @Success 200 {object} util.Response{data=service.AssignmentDetail} "成功"
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) GetDetail(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	detail, err := c.Assignments.GetDetail(id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ListPendingGrading godoc
// @Summary 待批改作业列表
// @Tags 批改
// @Produce  json
// @Security BearerAuth
// @Param   assessmentId path int true "测评ID"
// @Success 200 {object} util.Response{data=[]model.Assignment} "成功"
// @Router /api/assessments/{assessmentId}/pending [get]
func (c *AssignmentController) ListPendingGrading(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("assessmentId"))
	pending, err := c.Assignments.ListPendingGrading(assessmentID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, pending)
}

type GradeAnswerRequest struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// GradeAnswer godoc
// @Summary 批改单题
// @Description 为主观题打分；最后一道主观题批改完成后作业自动进入 graded 状态
// @Tags 批改
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作业ID"
// @Param   questionId path int true "题目ID"
// @Param   body body GradeAnswerRequest true "分数与评语"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 422 {object} util.Response "分数越界或题型不可手动批改"
// @Router /api/assignments/{id}/questions/{questionId}/grade [post]
func (c *AssignmentController) GradeAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))

	var req GradeAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assignments.GradeAnswer(claims.UserID, id, questionID, req.Score, req.Feedback)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// FinalizeGrading godoc
// @Summary 完成批改
// @Description 全客观题作业需要显式完成批改；仍有主观题未批改时返回 409
// @Tags 批改
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作业ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.Response "仍有题目未批改"
// @Router /api/assignments/{id}/finalize [post]
func (c *AssignmentController) FinalizeGrading(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	a, err := c.Assignments.FinalizeGrading(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reopen godoc
// @Summary 重新开放作业
// @Description 仅限被强制提交的监考作业；答案全部保留
// @Tags 批改
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作业ID"
// @Param   body body ReasonRequest true "原因"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/assignments/{id}/reopen [post]
func (c *AssignmentController) Reopen(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	var req ReasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assignments.Reopen(claims.UserID, id, req.Reason)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Reassign godoc
// @Summary 重新布置作业
// @Description 仅限没有任何答案记录的作业；重置为 not_started
// @Tags 批改
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "作业ID"
// @Param   body body ReasonRequest true "原因"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.Response "已有答案，禁止重新布置"
// @Router /api/assignments/{id}/reassign [post]
func (c *AssignmentController) Reassign(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := util.MustParseUint(ctx.Param("id"))

	var req ReasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assignments.Reassign(claims.UserID, id, req.Reason)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, a)
}
