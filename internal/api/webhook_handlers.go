package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (rs *RestServer) webhooksEnabled(c *gin.Context) bool {
	if rs.webhooks == nil {
		c.JSON(http.StatusNotImplemented, GenericResponse{Message: "Исходящие webhook'и отключены"})
		return false
	}
	return true
}

func (rs *RestServer) handleGetWebhooks(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: rs.webhooks.GetWebhooks()})
}

func (rs *RestServer) handleCreateWebhook(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	var req OutboundWebhook
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: "Неверный формат запроса: " + err.Error()})
		return
	}
	created := rs.webhooks.AddWebhook(req)
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "Webhook создан", Data: created})
}

func (rs *RestServer) webhookID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: "Неверный ID webhook'а"})
		return 0, false
	}
	return id, true
}

func (rs *RestServer) handleGetWebhook(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	id, ok := rs.webhookID(c)
	if !ok {
		return
	}
	wh, found := rs.webhooks.GetWebhook(id)
	if !found {
		c.JSON(http.StatusNotFound, GenericResponse{Message: "Webhook не найден"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: wh})
}

func (rs *RestServer) handleDeleteWebhook(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	id, ok := rs.webhookID(c)
	if !ok {
		return
	}
	if !rs.webhooks.DeleteWebhook(id) {
		c.JSON(http.StatusNotFound, GenericResponse{Message: "Webhook не найден"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Webhook удалён"})
}

func (rs *RestServer) handleGetWebhookEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: EventTypes()})
}
