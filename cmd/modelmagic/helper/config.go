package helper

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/query"
	"github.com/modelmagic/modelmagic/dao/store"
	"github.com/modelmagic/modelmagic/internal/handler"
	"github.com/modelmagic/modelmagic/pkg/config"
	"github.com/modelmagic/modelmagic/pkg/events"
	"github.com/modelmagic/modelmagic/pkg/mailer"
	"github.com/modelmagic/modelmagic/pkg/objectstore"
	"github.com/modelmagic/modelmagic/pkg/workflow"
)

// ConfigInitializer wires configuration into the runtime dependencies.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment overrides the listen addresses from .debug.env when
// running in gin debug mode, so a local server never shadows a deployed one.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	err := godotenv.Load(".debug.env")
	if err != nil {
		return err
	}

	be := os.Getenv("MODELMAGIC_BE_PORT")
	if be == "" {
		panic("MODELMAGIC_BE_PORT is not set")
	}
	ms := os.Getenv("MODELMAGIC_MS_PORT")
	if ms == "" {
		panic("MODELMAGIC_MS_PORT is not set")
	}

	ci.backendConfig.ServerAddr = ":" + be
	ci.backendConfig.MetricsAddr = ":" + ms

	return nil
}

// InitializeRegisterConfig builds the shared dependency bundle handed to the
// route managers: database, workflow engine, event hub, object store, mailer.
func (ci *ConfigInitializer) InitializeRegisterConfig() (*handler.RegisterConfig, error) {
	registerConfig := &handler.RegisterConfig{}

	db := query.GetDB()
	if err := query.Migrate(db); err != nil {
		return nil, err
	}
	registerConfig.DB = db

	hub := events.NewHub()
	registerConfig.Hub = hub

	st := store.New(db)
	registerConfig.Workflow = workflow.NewService(st, st, st, hub)

	objStore, err := objectstore.NewClient(ci.backendConfig)
	if err != nil {
		return nil, err
	}
	registerConfig.ObjectStore = objStore

	registerConfig.Mailer = mailer.New(ci.backendConfig)

	klog.Info("dependencies initialized")
	return registerConfig, nil
}
