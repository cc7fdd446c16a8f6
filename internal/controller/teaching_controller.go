package controller

import (
	"time"

	"school_assess_backend/internal/service"
	"school_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TeachingController struct {
	Teaching *service.TeachingService
}

func NewTeachingController(teaching *service.TeachingService) *TeachingController {
	return &TeachingController{Teaching: teaching}
}

type AssignTeacherRequest struct {
	TeacherID   uint    `json:"teacherId" binding:"required"`
	Coefficient float64 `json:"coefficient"`
	Effective   string  `json:"effective"` // RFC3339 或 2006-01-02 15:04:05；缺省为当前时间
}

// AssignTeacher godoc
// @Summary 指派任课教师
// @Description 首次指派创建初始时段；换任在 effective 时刻关闭旧时段并开启新时段
// @Tags 任课
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   subjectId path int true "科目ID"
// @Param   body body AssignTeacherRequest true "指派信息"
// @Success 200 {object} util.Response{data=model.ClassSubject} "成功"
// @Failure 409 {object} util.Response "生效日期与现有历史冲突"
// @Router /api/classes/{classId}/subjects/{subjectId}/teacher [put]
func (c *TeachingController) AssignTeacher(ctx *gin.Context) {
	classID := util.MustParseUint(ctx.Param("classId"))
	subjectID := util.MustParseUint(ctx.Param("subjectId"))

	var req AssignTeacherRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	effective := time.Now()
	if req.Effective != "" {
		t, err := time.Parse(time.RFC3339, req.Effective)
		if err != nil {
			t, err = time.Parse(util.TimeFormat, req.Effective)
		}
		if err != nil {
			util.BadRequest(ctx, "effective must be RFC3339 or "+util.TimeFormat)
			return
		}
		effective = t
	}

	period, err := c.Teaching.AssignTeacher(classID, subjectID, req.TeacherID, req.Coefficient, effective)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, period)
}

// CurrentTeacher godoc
// @Summary 当前任课教师
// @Tags 任课
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   subjectId path int true "科目ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "该时段无任课教师"
// @Router /api/classes/{classId}/subjects/{subjectId}/teacher [get]
func (c *TeachingController) CurrentTeacher(ctx *gin.Context) {
	classID := util.MustParseUint(ctx.Param("classId"))
	subjectID := util.MustParseUint(ctx.Param("subjectId"))

	teacher, period, err := c.Teaching.CurrentTeacher(classID, subjectID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"teacher": teacher, "period": period})
}

// History godoc
// @Summary 任课历史
// @Description 按时间升序返回班级科目的全部任课时段
// @Tags 任课
// @Produce  json
// @Security BearerAuth
// @Param   classId path int true "班级ID"
// @Param   subjectId path int true "科目ID"
// @Success 200 {object} util.Response{data=[]model.ClassSubject} "成功"
// @Router /api/classes/{classId}/subjects/{subjectId}/teacher/history [get]
func (c *TeachingController) History(ctx *gin.Context) {
	classID := util.MustParseUint(ctx.Param("classId"))
	subjectID := util.MustParseUint(ctx.Param("subjectId"))

	history, err := c.Teaching.History(classID, subjectID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// MyWorkload godoc
// @Summary 教师当前任课列表
// @Tags 任课
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.ClassSubject} "成功"
// @Router /api/teacher/workload [get]
func (c *TeachingController) MyWorkload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	periods, err := c.Teaching.TeacherWorkload(claims.UserID)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, periods)
}
