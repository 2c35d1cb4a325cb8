package main

import (
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/cmd/modelmagic/helper"
	"github.com/modelmagic/modelmagic/pkg/scheduler"
)

// @title						ModelMagic API
// @version					1.0.0
// @description				API server for the ModelMagic creative portal: project
// @description				lifecycle, asset review and the admin dashboard.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Sign in via the magic link flow, then supply 'Bearer ${TOKEN}'.
func main() {
	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()

	if err := configInit.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	registerConfig, err := configInit.InitializeRegisterConfig()
	if err != nil {
		klog.Fatalf("Failed to register config: %s\n", err)
	}

	jobs := scheduler.New(registerConfig.DB)
	if err := jobs.Start(); err != nil {
		klog.Fatalf("Failed to start scheduler: %s", err)
	}
	defer jobs.Stop()

	serverRunner := helper.NewServerRunner(backendConfig)
	serverRunner.StartMetrics()
	serverRunner.StartServer(registerConfig)
}
