package handlers

import (
	"net/http"

	"peer-delivery-api/models"
	"peer-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo exposes the order lifecycle for API consumers
func GetStateMachineInfo(c *gin.Context) {
	next := make(map[models.OrderStatus][]models.OrderStatus, len(models.AllStatuses))
	terminal := []models.OrderStatus{}
	for _, st := range models.AllStatuses {
		next[st] = statemachine.ValidTransitionsFrom(st)
		if statemachine.IsTerminal(st) {
			terminal = append(terminal, st)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"states":          models.AllStatuses,
		"terminal_states": terminal,
		"next_states":     next,
		"transitions":     statemachine.GetAllTransitions(),
	})
}
