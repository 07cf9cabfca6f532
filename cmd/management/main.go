package main

import (
	"context"
	"time"

	"roomgrid/internal/calendar/handler"
	"roomgrid/internal/calendar/mgmt"
	"roomgrid/internal/calendar/notify"
	"roomgrid/internal/calendar/service"
	"roomgrid/internal/calendar/validator"
	"roomgrid/pkg/app"
	"roomgrid/pkg/bus"
	"roomgrid/pkg/config"
	"roomgrid/pkg/dataservice"
	"roomgrid/pkg/model"
)

const ServiceName = "management"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting management service")

	client := dataservice.NewRPCClient(
		cfg.DataServiceURL,
		cfg.DataServiceDB,
		cfg.DataServiceUser,
		cfg.DataServicePassword,
		cfg.DataServiceTimeout,
	)
	authCtx, cancel := context.WithTimeout(context.Background(), cfg.DataServiceTimeout)
	defer cancel()
	if err := client.Authenticate(authCtx); err != nil {
		cfg.Log.Fatal("Data service authentication failed", "error", err)
	}

	managementService := initServices(cfg, client)

	if err := managementService.Load(context.Background()); err != nil {
		cfg.Log.Warn("Initial grid load failed", "error", err)
	}

	busCfg := bus.LoadConfig()
	consumer, err := bus.NewConsumer(
		busCfg,
		busCfg.NotificationTopic,
		notify.ManagementMessageHandler(managementService, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create notification consumer", "error", err)
	}
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			cfg.Log.Error("Notification consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewManagementHandler(managementService, cfg.Log))
	serverApp.OnShutdown(func() {
		stopConsumer()
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, client dataservice.Client) service.ManagementService {
	grid := mgmt.New(cfg.Log, model.Midnight(time.Now()), cfg.VisibleDays, roomTypes(cfg))

	managementValidator := validator.NewCalendarValidator(cfg.Log)
	managementService := service.NewManagementService(client, grid, managementValidator, cfg)

	cfg.Log.Info("Management service initialized", "visible_days", cfg.VisibleDays)
	return managementService
}

// roomTypes pins the grid rows. The feed only carries records for types
// the property actually sells, so an env override is enough here.
func roomTypes(cfg *config.Config) []string {
	return cfg.RoomTypes
}
