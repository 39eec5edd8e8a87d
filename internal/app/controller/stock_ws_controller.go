package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/internal/middleware"
	"github.com/ikkim/cartcore-backend/internal/websocket"
)

type StockWSController struct {
	hub         *websocket.Hub
	checkOrigin func(*http.Request) bool
}

// NewStockWSController serves stock updates from hub. allowedOrigins of
// "*" accepts any origin; an empty list keeps same-origin checks.
func NewStockWSController(hub *websocket.Hub, allowedOrigins []string) *StockWSController {
	return &StockWSController{
		hub:         hub,
		checkOrigin: originChecker(allowedOrigins),
	}
}

// Stream upgrades to a websocket that receives committed stock levels
// GET /ws/stock
func (ctrl *StockWSController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := websocket.Upgrade(c.Writer, c.Request, ctrl.checkOrigin)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn("Failed to upgrade stock websocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := websocket.NewClient(ctrl.hub, conn)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
