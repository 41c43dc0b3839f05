// Package api exposes the graph store as a JSON HTTP API.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"profilegraph/backend/internal/graph"
)

// NewRouter wires every route. gatherer serves /metrics; pass nil to omit it.
func NewRouter(store graph.Store, log *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	h := NewHandlers(store, log)

	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.POST("/profiles", h.AddProfile)
		api.GET("/profiles", h.Dump)

		profile := api.Group("/profiles/:firstname/:lastname")
		profile.GET("", h.GetProfile)
		profile.PATCH("", h.ModifyProfile)
		profile.DELETE("", h.RemoveProfile)
		profile.GET("/friends", h.GetFriends)
		profile.PUT("/friends/:ffirst/:flast", h.AddFriend)
		profile.DELETE("/friends/:ffirst/:flast", h.RemoveFriend)
	}

	return router
}
