package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/services"
)

type PlanHandler struct {
	plannerService services.PlannerService
}

func NewPlanHandler(plannerService services.PlannerService) *PlanHandler {
	return &PlanHandler{plannerService: plannerService}
}

func (ph *PlanHandler) Generate(c *gin.Context) {
	var req struct {
		Skill    string `json:"skill"`
		Duration int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	plan, err := ph.plannerService.GeneratePlan(c.Request.Context(), rd.UserID, req.Skill, req.Duration)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, plan)
}

func (ph *PlanHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	plan, err := ph.plannerService.GetPlan(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, plan)
}

func (ph *PlanHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if err := ph.plannerService.DeletePlan(c.Request.Context(), rd.UserID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ph *PlanHandler) UpdateDay(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	var req struct {
		IsCompleted *bool   `json:"isCompleted"`
		Reflection  *string `json:"reflection"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	plan, err := ph.plannerService.UpdateDay(c.Request.Context(), rd.UserID, day, services.DayUpdate{
		IsCompleted: req.IsCompleted,
		Reflection:  req.Reflection,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, plan)
}
