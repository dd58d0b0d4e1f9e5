package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Routes groups everything the server mounts.
type Routes struct {
	Screens   *ScreenHandler
	Account   *AccountHandler
	Websocket echo.HandlerFunc
	Metrics   http.Handler
}

// Register mounts the list screens, the storefront actions, the live views and the
// operational endpoints on e.
func (r Routes) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/screens/:screen", r.Screens.Query)
	api.DELETE("/screens/:screen/items/:id", r.Screens.Delete)
	api.PATCH("/screens/:screen/items/:id", r.Screens.Update)
	api.POST("/media", r.Screens.UploadMedia)
	api.POST("/books", r.Screens.PublishBook)
	api.POST("/cart", r.Screens.AddToCart)
	if r.Account != nil {
		api.GET("/seller-request", r.Account.SellerRequest)
		api.GET("/categories", r.Account.Categories)
	}

	if r.Websocket != nil {
		e.GET("/ws/screens/:screen", r.Websocket)
	}
	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
