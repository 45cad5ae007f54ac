package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-forecast-aggregation/internal/api/http"
	"github.com/i474232898/weather-forecast-aggregation/internal/mqtt"
	"github.com/i474232898/weather-forecast-aggregation/internal/scheduler"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the weather service",
		Long:  "Start the HTTP API, the periodic refresh and the MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(configFile)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg

			// State fan-out to widgets.
			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("ERROR: MQTT disabled: %v", err)
			} else {
				defer publisher.Close()
				detach := publisher.Attach(a.service)
				defer detach()
				if cfg.MQTT.Enabled {
					log.Printf("INFO: publishing weather to %s under %s/", cfg.MQTT.Broker, cfg.MQTT.TopicPrefix)
				}
			}

			// Scheduler that periodically refreshes the selected location.
			sched := scheduler.New(cfg.Refresh.Interval, a.service)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				sched.RunOnce(ctx)
			}()

			// Basic app configuration
			app := fiber.New(fiber.Config{
				AppName:               "weather-forecast-aggregation",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          30 * time.Second,
				ErrorHandler:          httpapi.ErrorHandler,
			})

			// Global middleware
			app.Use(logger.New())
			app.Use(recover.New())

			// Basic health endpoint
			app.Get("/health", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"status":   "ok",
					"service":  "weather-forecast-aggregation",
					"provider": a.service.ProviderName(),
				})
			})

			// API routes.
			httpapi.RegisterRoutes(app, a.service)

			go func() {
				if err := app.Listen(":" + cfg.API.Port); err != nil {
					log.Printf("fiber server stopped: %v", err)
				}
			}()
			log.Printf("INFO: listening on :%s", cfg.API.Port)

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()
			log.Println("INFO: shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Printf("error during shutdown: %v", err)
			}
			return nil
		},
	}
}
