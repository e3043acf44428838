package handlers

import (
	"net/http"

	"schoolhub/internal/apperr"
	"schoolhub/internal/services"
	"schoolhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HomeHandler struct {
	home *services.HomeService
	log  *zap.Logger
}

func NewHomeHandler(home *services.HomeService, log *zap.Logger) *HomeHandler {
	return &HomeHandler{home: home, log: log}
}

// SaveMeals POST /home/meals
func (h *HomeHandler) SaveMeals(c *gin.Context) {
	var table services.MealTable
	if !bindJSON(c, h.log, &table) {
		return
	}
	if err := h.home.SaveMeals(c.Request.Context(), table); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Meals GET /home/meals
func (h *HomeHandler) Meals(c *gin.Context) {
	table, err := h.home.Meals(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// Planner GET /home/planner/:date
func (h *HomeHandler) Planner(c *gin.Context) {
	items, err := h.home.PlannerItems(c.Request.Context(), me(c).ID, c.Param("date"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type plannerRequest struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// AddPlanner POST /home/planner
func (h *HomeHandler) AddPlanner(c *gin.Context) {
	var req plannerRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	item, err := h.home.AddPlannerItem(c.Request.Context(), me(c).ID, req.Date, req.Text)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

type plannerDoneRequest struct {
	Done bool `json:"done"`
}

// SetDone PUT /home/planner/done/:id
func (h *HomeHandler) SetDone(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, h.log, apperr.NotFound("항목을 찾을 수 없습니다."))
		return
	}
	var req plannerDoneRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.home.SetPlannerDone(c.Request.Context(), me(c).ID, id, req.Done); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeletePlanner DELETE /home/planner/:id
func (h *HomeHandler) DeletePlanner(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, h.log, apperr.NotFound("항목을 찾을 수 없습니다."))
		return
	}
	if err := h.home.DeletePlannerItem(c.Request.Context(), me(c).ID, id); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type gradeRequest struct {
	Subjects []utils.GradeSubject `json:"subjects"`
}

// Grade POST /home/grade
func (h *HomeHandler) Grade(c *gin.Context) {
	var req gradeRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.home.Grade(req.Subjects)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
