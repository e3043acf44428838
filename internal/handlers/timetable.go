package handlers

import (
	"net/http"

	"schoolhub/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TimetableHandler struct {
	timetable *services.TimetableService
	log       *zap.Logger
}

func NewTimetableHandler(timetable *services.TimetableService, log *zap.Logger) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, log: log}
}

// Get GET /time/:user_id
func (h *TimetableHandler) Get(c *gin.Context) {
	cells, err := h.timetable.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

type saveCellRequest struct {
	CellKey string `json:"cell_key"`
	Subject string `json:"subject"`
}

// Save POST /time/save, always for the caller.
func (h *TimetableHandler) Save(c *gin.Context) {
	var req saveCellRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.timetable.Save(c.Request.Context(), me(c).ID, req.CellKey, req.Subject); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
