package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/envisage-infotech/hr-interview-desk/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	recordsHandler  *Records
	sessionHandler  *Session
	calendarHandler *Calendar
	settingsHandler *Settings
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, records *Records, session *Session, calendar *Calendar, settings *Settings) *Router {
	return &Router{
		cfg:             cfg,
		recordsHandler:  records,
		sessionHandler:  session,
		calendarHandler: calendar,
		settingsHandler: settings,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupCallRoutes(v1)
	rt.setupSessionRoutes(v1)
	rt.setupCalendarRoutes(v1)
	rt.setupSettingsRoutes(v1)
}

// setupCallRoutes configures call-record and phone-number routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	calls := g.Group("/calls")
	calls.GET("", rt.recordsHandler.ListCalls)
	calls.POST("/refresh", rt.recordsHandler.RefreshCalls)
	calls.GET("/:id", rt.recordsHandler.GetCall)

	numbers := g.Group("/phone-numbers")
	numbers.GET("", rt.recordsHandler.ListPhoneNumbers)
	numbers.POST("/import", rt.recordsHandler.ImportTwilioNumber)
	numbers.DELETE("/:id", rt.recordsHandler.DeletePhoneNumber)
}

// setupSessionRoutes configures live call-session routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	session := g.Group("/session")
	session.GET("", rt.sessionHandler.GetSession)
	session.POST("/start", rt.sessionHandler.StartInbound)
	session.POST("/outbound", rt.sessionHandler.StartOutbound)
	session.POST("/stop", rt.sessionHandler.Stop)
	session.POST("/mute", rt.sessionHandler.ToggleMute)
	session.POST("/message", rt.sessionHandler.SendMessage)
}

// setupCalendarRoutes configures calendar routes
func (rt *Router) setupCalendarRoutes(g *echo.Group) {
	calendar := g.Group("/calendar")
	calendar.GET("/events", rt.calendarHandler.ListEvents)
}

// setupSettingsRoutes configures assistant-settings routes
func (rt *Router) setupSettingsRoutes(g *echo.Group) {
	settings := g.Group("/settings")
	settings.GET("", rt.settingsHandler.GetSettings)
	settings.PUT("", rt.settingsHandler.UpdateSettings)
	settings.DELETE("", rt.settingsHandler.ResetSettings)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
