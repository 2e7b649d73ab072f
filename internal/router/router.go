package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/workplane-dev/workplane/internal/auth"
	"github.com/workplane-dev/workplane/internal/handlers"
	"github.com/workplane-dev/workplane/internal/middleware"
	"github.com/workplane-dev/workplane/internal/store"
)

func New(h *handlers.Handlers, mgr *auth.Manager, st store.Store, origins []string) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middleware.Auth(mgr, st)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", h.Logout)
			authGroup.GET("/me", authRequired, h.Me)
			authGroup.PATCH("/me", authRequired, h.UpdateUser)
			authGroup.DELETE("/me", authRequired, h.DeleteUser)
		}

		workplaces := api.Group("/workplaces", authRequired)
		{
			workplaces.POST("", h.CreateWorkplace)
			workplaces.GET("", h.ListWorkplaces)

			// Joining happens before membership exists, so no workplace scope here.
			workplaces.GET("/:workplace_id/invitation", h.AcceptInvitation)

			scoped := workplaces.Group("/:workplace_id", middleware.WorkplaceScope(st))
			{
				scoped.GET("", h.GetWorkplace)
				scoped.PATCH("", h.UpdateWorkplace)
				scoped.DELETE("", h.DeleteWorkplace)

				// Member endpoints
				scoped.GET("/users", h.ListMembers)
				scoped.POST("/invite", h.InviteMember)
				scoped.PATCH("/users/:membership_id", h.ChangeMemberRole)
				scoped.DELETE("/users/:membership_id", h.RemoveMember)

				// Sprint endpoints
				scoped.POST("/sprints", h.CreateSprint)
				scoped.GET("/sprints", h.ListSprints)
				scoped.GET("/sprints/:sprint_id", h.GetSprint)
				scoped.PATCH("/sprints/:sprint_id", h.UpdateSprint)
				scoped.DELETE("/sprints/:sprint_id", h.DeleteSprint)

				// Issue endpoints
				scoped.POST("/issues", h.CreateIssue)
				scoped.GET("/issues", h.ListIssues)
				scoped.GET("/issues/:issue_id", h.GetIssue)
				scoped.PATCH("/issues/:issue_id", h.UpdateIssue)
				scoped.DELETE("/issues/:issue_id", h.DeleteIssue)
				scoped.PUT("/issues/:issue_id/implementers/:membership_id", h.AssignImplementer)
				scoped.DELETE("/issues/:issue_id/implementers/:membership_id", h.UnassignImplementer)

				// Comment endpoints
				scoped.POST("/issues/:issue_id/comments", h.CreateComment)
				scoped.GET("/issues/:issue_id/comments", h.ListComments)
				scoped.PATCH("/issues/:issue_id/comments/:comment_id", h.UpdateComment)
				scoped.DELETE("/issues/:issue_id/comments/:comment_id", h.DeleteComment)

				// File endpoints
				scoped.POST("/file", h.UploadFile)
				scoped.GET("/file/:filename", h.DownloadFile)
			}
		}
	}

	return r
}
