package apiserver

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/mentatproj/mentat/internal/apiserver/handler/v1"
	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	registry mcp.Registry
	queries  v1.QueryService
	audit    v1.AuditReader
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	serverHandler := v1.NewServerHandler(deps.registry)
	toolHandler := v1.NewToolHandler(deps.registry)
	queryHandler := v1.NewQueryHandler(deps.queries)
	systemHandler := v1.NewSystemHandler()

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		// Server configuration CRUD.
		apiV1.GET("/servers", serverHandler.List)
		apiV1.POST("/servers", serverHandler.Create)
		apiV1.GET("/servers/:name", serverHandler.Get)
		apiV1.PUT("/servers/:name", serverHandler.Update)
		apiV1.DELETE("/servers/:name", serverHandler.Delete)

		// Connection lifecycle.
		apiV1.POST("/servers/:name/connect", serverHandler.Connect)
		apiV1.POST("/servers/connections", serverHandler.ConnectURL)
		apiV1.DELETE("/servers/:name/connection", serverHandler.Disconnect)
		apiV1.DELETE("/servers/connections", serverHandler.DisconnectAll)

		// Tools and queries.
		apiV1.GET("/tools", toolHandler.List)
		apiV1.POST("/tools/calls", toolHandler.Call)
		apiV1.POST("/queries", queryHandler.Create)

		// Operations.
		apiV1.GET("/system/info", systemHandler.Info)
		if deps.audit != nil {
			apiV1.GET("/audit/calls", v1.NewAuditHandler(deps.audit).List)
		}
	}
}
