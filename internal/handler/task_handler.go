package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskmanager/internal/model"
	"taskmanager/internal/service/task"
	"taskmanager/pkg/apperr"
	"taskmanager/pkg/logger"
	"taskmanager/pkg/util"
)

const (
	MsgInvalidTaskID = "Invalid task id"
	MsgTaskDeleted   = "Task deleted"

	msgDueDate = "due_date must be YYYY-MM-DD"
)

type TaskHandler struct {
	taskService *task.Service
	logger      *zap.Logger
}

func NewTaskHandler(taskService *task.Service, logger *zap.Logger) *TaskHandler {
	registerValidators()
	return &TaskHandler{taskService: taskService, logger: logger}
}

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required,notblank"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date" binding:"required,datetime=2006-01-02"`
	Status      *string `json:"status" binding:"omitnil,oneof=Pending Completed"`
}

func (createTaskRequest) fieldMessages() map[string]string {
	return map[string]string{
		"title":    "Title is required",
		"due_date": msgDueDate,
		"status":   "Invalid status",
	}
}

// updateTaskRequest 部分更新：未提供（或为 null）的字段保持原值
type updateTaskRequest struct {
	Title       *string `json:"title" binding:"omitnil,notblank"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" binding:"omitnil,datetime=2006-01-02"`
	Status      *string `json:"status" binding:"omitnil,oneof=Pending Completed"`
}

func (updateTaskRequest) fieldMessages() map[string]string {
	return map[string]string{
		"title":    "Title cannot be empty",
		"due_date": msgDueDate,
		"status":   "Invalid status",
	}
}

func (r updateTaskRequest) patch() (model.TaskPatch, error) {
	p := model.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
	if r.DueDate != nil {
		d, err := model.ParseDate(*r.DueDate)
		if err != nil {
			return p, err
		}
		p.DueDate = &d
	}
	return p, nil
}

// callerID 从请求 context 中读取 Auth Gate 写入的用户 id
func callerID(c *gin.Context) (int, error) {
	claims, ok := util.ClaimsFrom(c.Request.Context())
	if !ok {
		return 0, apperr.New(apperr.KindUnauthenticated, "Not authenticated")
	}
	return claims.UserID, nil
}

// parseTaskID 解析路径中的任务 id。超出 INT 列范围的数字不可能存在，按未找到处理
func parseTaskID(c *gin.Context) (int, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, apperr.New(apperr.KindNotFound, task.MsgTaskNotFound)
		}
		return 0, apperr.Wrap(apperr.KindValidation, MsgInvalidTaskID, err)
	}
	return int(id), nil
}

// List handles GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Debug("List tasks: success",
		zap.Int("user_id", userID),
		zap.Int("task_count", len(tasks)),
	)
	c.JSON(http.StatusOK, tasks)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Warn("Create task: invalid input",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		_ = c.Error(err)
		return
	}

	due, err := model.ParseDate(req.DueDate)
	if err != nil {
		_ = c.Error(apperr.Validation(apperr.FieldError{Field: "due_date", Message: msgDueDate}))
		return
	}

	in := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	t, err := h.taskService.Create(c.Request.Context(), userID, in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// Update handles PUT /api/tasks/:id
// 请求体先于 id 校验
func (h *TaskHandler) Update(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req updateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Warn("Update task: invalid input",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		_ = c.Error(err)
		return
	}

	id, err := parseTaskID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		_ = c.Error(apperr.Validation(apperr.FieldError{Field: "due_date", Message: msgDueDate}))
		return
	}

	t, err := h.taskService.Update(c.Request.Context(), userID, id, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, err := parseTaskID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": MsgTaskDeleted})
}
