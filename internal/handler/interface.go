package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modelmagic/modelmagic/pkg/events"
	"github.com/modelmagic/modelmagic/pkg/mailer"
	"github.com/modelmagic/modelmagic/pkg/objectstore"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the shared dependencies handed to every manager.
type RegisterConfig struct {
	DB          *gorm.DB
	Workflow    *workflow.Service
	Hub         *events.Hub
	ObjectStore *objectstore.Client
	Mailer      *mailer.Mailer
}

// Registers collects the manager constructors; each handler file appends its
// own in init().
var Registers []func(*RegisterConfig) Manager
