package main

import (
	"context"
	"time"

	"roomgrid/internal/calendar/coordinator"
	"roomgrid/internal/calendar/engine"
	"roomgrid/internal/calendar/handler"
	"roomgrid/internal/calendar/notify"
	"roomgrid/internal/calendar/service"
	"roomgrid/internal/calendar/validator"
	"roomgrid/pkg/app"
	"roomgrid/pkg/bus"
	"roomgrid/pkg/config"
	"roomgrid/pkg/dataservice"
)

const ServiceName = "calendar"

const defaultTab = "default"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting calendar service")

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

	hub := handler.NewHub(cfg.Log)

	busCfg := bus.LoadConfig()
	producer, err := bus.NewProducer(busCfg, busCfg.EventTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create event producer", "error", err)
	}

	emitter := notify.MultiEmitter{hub, notify.NewEventPublisher(producer, cfg.Log)}
	calendarService := initServices(cfg, client, emitter)

	if err := calendarService.Load(context.Background()); err != nil {
		// The periodic reload and bus feed will catch the grid up.
		cfg.Log.Warn("Initial dataset load failed", "error", err)
	}

	consumer, err := bus.NewConsumer(
		busCfg,
		busCfg.NotificationTopic,
		notify.CalendarMessageHandler(calendarService, cfg.Log),
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
	serverApp.SetApp(cfg, handler.NewCalendarHandler(calendarService, hub, cfg, cfg.Log))
	serverApp.OnShutdown(func() {
		stopConsumer()
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close producer", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, client dataservice.Client, emitter engine.Emitter) service.CalendarService {
	coord := coordinator.New(cfg.Log, nil, emitter)
	if _, err := coord.AddTab(defaultTab, engineOptions(cfg)); err != nil {
		cfg.Log.Fatal("Failed to create default tab", "error", err)
	}

	calendarValidator := validator.NewCalendarValidator(cfg.Log)
	calendarService := service.NewCalendarService(client, coord, calendarValidator, cfg)

	cfg.Log.Info("Calendar service initialized", "visible_days", cfg.VisibleDays)
	return calendarService
}

func engineOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		StartDate:             time.Now(),
		Days:                  cfg.VisibleDays,
		AllowInvalidActions:   cfg.AllowInvalidActions,
		AssistedMovement:      cfg.AssistedMovement,
		DivideRoomsByCapacity: cfg.DivideRoomsByCapacity,
		ShowUnusedZones:       cfg.ShowUnusedZones,
		CountChildrenAsGuests: cfg.CountChildrenAsGuests,
		ActionDelay:           cfg.ActionDelay,
	}
}
