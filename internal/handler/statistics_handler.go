package handler

import (
	"go-inventory-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatisticsHandler struct {
	service service.StatisticsService
	log     *zap.Logger
}

func NewStatisticsHandler(s service.StatisticsService, log *zap.Logger) *StatisticsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatisticsHandler{service: s, log: log}
}

// GetStatistics returns overview counts, category breakdown, recent activity,
// rankings and stock alerts.
func (h *StatisticsHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.service.Get(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}
