package internal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/internal/handler"
	"github.com/modelmagic/modelmagic/internal/middleware"
)

// Register builds the gin engine with the public, protected and admin route
// groups and mounts every registered manager under its name.
func Register(conf *handler.RegisterConfig) *gin.Engine {
	engine := gin.Default()

	engine.GET("/v1/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	public := engine.Group("/v1")

	protected := engine.Group("/v1")
	protected.Use(middleware.AuthProtected())

	admin := engine.Group("/v1/admin")
	admin.Use(middleware.AuthProtected(), middleware.AuthAdmin())

	for _, register := range handler.Registers {
		mgr := register(conf)
		mgr.RegisterPublic(public.Group(mgr.GetName()))
		mgr.RegisterProtected(protected.Group(mgr.GetName()))
		mgr.RegisterAdmin(admin.Group(mgr.GetName()))
		klog.Infof("Registered manager: %s", mgr.GetName())
	}

	return engine
}
