package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the route handlers mounted under the API prefix.
type Handlers struct {
	Sessions *SessionHandler
	Catalog  *CatalogHandler
	Planning *PlanningHandler
	Exports  *ExportJobHandler
	Metrics  *MetricsHandler
}

// Register mounts the observability endpoints on r and the API under prefix.
func Register(r *gin.Engine, prefix string, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)

	if h.Sessions != nil {
		sessions := api.Group("/sessions")
		sessions.GET("", h.Sessions.List)
		sessions.POST("", h.Sessions.Create)
		sessions.GET("/:id", h.Sessions.Get)
		sessions.PUT("/:id", h.Sessions.Update)
		sessions.DELETE("/:id", h.Sessions.Delete)
	}

	if h.Catalog != nil {
		api.GET("/school-years", h.Catalog.SchoolYears)
		api.GET("/school-years/:id/periods", h.Catalog.Periods)
		api.GET("/classes", h.Catalog.Classes)
		api.GET("/teachers", h.Catalog.Teachers)
		api.GET("/classrooms", h.Catalog.ClassRooms)
		api.GET("/specializations", h.Catalog.Specializations)
		api.GET("/session-types", h.Catalog.SessionTypes)
		api.GET("/courses", h.Catalog.Courses)
	}

	if h.Planning != nil {
		planning := api.Group("/planning")
		planning.GET("/time-options", h.Planning.TimeOptions)
		planning.POST("/validate-interval", h.Planning.ValidateInterval)
		planning.GET("/classes/:id/specialization", h.Planning.Specialization)
		planning.GET("/calendar/week", h.Planning.Week)
		planning.GET("/calendar/month", h.Planning.Month)
		planning.GET("/calendar/export", h.Planning.Export)
	}

	if h.Exports != nil {
		api.POST("/planning/calendar/export-jobs", h.Exports.Create)
		api.GET("/planning/calendar/export-jobs/:id", h.Exports.Status)
		api.GET("/planning/calendar/downloads/:token", h.Exports.Download)
	}
}
