package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/namanabbad02/invoice-app/internal/config"
	"github.com/namanabbad02/invoice-app/internal/db"
	"github.com/namanabbad02/invoice-app/internal/drive"
	"github.com/namanabbad02/invoice-app/internal/handlers"
	"github.com/namanabbad02/invoice-app/internal/mail"
	"github.com/namanabbad02/invoice-app/internal/pdf"
	"github.com/namanabbad02/invoice-app/internal/server"
	"github.com/namanabbad02/invoice-app/internal/whatsapp"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := config.GetLogger()

	conn, err := db.ConnectAndMigrate(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("database setup failed")
	}
	if *migrateOnly {
		log.Info("migrations applied, exiting")
		return
	}

	var mailer handlers.Mailer
	if cfg.SMTP.Host != "" && cfg.SMTP.User != "" {
		mailer = mail.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	} else {
		log.Warn("SMTP not configured, invoice emails disabled")
	}
	var uploader handlers.Uploader
	if cfg.Drive.ClientID != "" && cfg.Drive.RefreshToken != "" {
		uploader = drive.NewUploader(cfg.Drive.ClientID, cfg.Drive.ClientSecret,
			cfg.Drive.RedirectURL, cfg.Drive.RefreshToken, cfg.Drive.FolderID)
	} else {
		log.Warn("Google Drive not configured, invoice uploads disabled")
	}
	var messenger handlers.Messenger
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.WhatsAppFrom != "" {
		messenger = whatsapp.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppFrom)
	} else {
		log.Warn("Twilio not configured, WhatsApp delivery disabled")
	}

	handler := server.New(server.Deps{
		DB:        conn,
		Renderer:  pdf.NewRenderer(cfg.FeedbackURL, cfg.InstagramURL),
		Mailer:    mailer,
		Uploader:  uploader,
		Messenger: messenger,
		TZOffset:  cfg.TZOffset,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
