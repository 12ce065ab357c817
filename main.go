package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JillVernus/screentimed/internal/clock"
	"github.com/JillVernus/screentimed/internal/config"
	"github.com/JillVernus/screentimed/internal/database"
	"github.com/JillVernus/screentimed/internal/engine"
	"github.com/JillVernus/screentimed/internal/handlers"
	"github.com/JillVernus/screentimed/internal/logger"
	"github.com/JillVernus/screentimed/internal/middleware"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/overrides"
	"github.com/JillVernus/screentimed/internal/settings"
	"github.com/JillVernus/screentimed/internal/telegram"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	envCfg := config.NewEnvConfig()

	// 🔒 Refuse the default access key outside local development.
	// A misconfigured deployment must fail loudly, not run open.
	if envCfg.AccessKey == "your-access-key" {
		if os.Getenv("ALLOW_INSECURE_DEFAULT_KEY") == "true" && envCfg.IsDevelopment() {
			log.Println("⚠️ Warning: using the default ACCESS_KEY, local development only")
		} else {
			log.Fatal("🚨 Security error: default ACCESS_KEY is not allowed. Set a strong key in .env, or set ALLOW_INSECURE_DEFAULT_KEY=true in development")
		}
	}

	logCfg := &logger.Config{
		LogDir:     envCfg.LogDir,
		LogFile:    envCfg.LogFile,
		MaxSize:    envCfg.LogMaxSize,
		MaxBackups: envCfg.LogBackups,
		MaxAge:     envCfg.LogMaxAge,
		Compress:   envCfg.LogCompress,
		Console:    envCfg.LogToConsole,
	}
	if err := logger.Setup(logCfg); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	db, err := database.Open(database.Config{Path: envCfg.DatabasePath})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("✅ Database ready at %s", db.Path())

	clk := clock.System()
	store, err := settings.NewStore(db, clk)
	if err != nil {
		log.Fatalf("Failed to initialize settings store: %v", err)
	}

	// Hot-reloadable override file for recovering a locked machine
	override := overrides.New(store, envCfg.OverrideFile)
	if err := override.Start(); err != nil {
		log.Printf("⚠️ Settings override watcher disabled: %v", err)
	} else {
		defer override.Stop()
	}

	dispatcher := notify.NewDispatcher()
	dispatcher.Register(notify.LogNotifier{})
	broadcaster := notify.NewBroadcaster()
	dispatcher.Register(broadcaster)

	eng := engine.New(store, clk)

	// A verified shutdown request cancels the root context; the main
	// goroutine then drains everything the same way a signal would.
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	eng.SetShutdownFunc(stop)

	// Load today's state and replay the blocking screen if needed
	// before anything can observe the countdown.
	dispatcher.Dispatch(eng.Start())

	bot := telegram.NewBot(store, eng, dispatcher)
	go bot.Run(rootCtx)

	runner := engine.NewRunner(eng, dispatcher)
	go runner.Run(rootCtx)

	if envCfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// gin.New instead of gin.Default keeps the per-request logger out;
	// a tick loop plus SSE would flood it
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.AccessKeyMiddleware(envCfg))

	timerHandler := handlers.NewTimerHandler(eng, store, dispatcher)
	settingsHandler := handlers.NewSettingsHandler(store)

	r.GET(envCfg.HealthCheckPath, handlers.HealthCheck())
	r.GET("/health/detailed", handlers.HealthCheckDetailed(envCfg))

	api := r.Group("/api")
	{
		api.GET("/status", timerHandler.GetStatus)
		api.GET("/history", timerHandler.GetHistory)
		api.GET("/events", handlers.EventStream(broadcaster, eng, store))

		api.POST("/extend", timerHandler.Extend)
		api.POST("/pause", timerHandler.Pause)
		api.POST("/resume", timerHandler.Resume)
		api.POST("/reset", timerHandler.Reset)
		api.POST("/unlock", timerHandler.Unlock)
		api.POST("/shutdown", timerHandler.Shutdown)

		api.POST("/display/warning", timerHandler.ShowWarning)
		api.POST("/display/blocking", timerHandler.ShowBlocking)

		api.GET("/settings", settingsHandler.GetSettings)
		api.PUT("/settings", settingsHandler.UpdateSettings)
	}

	addr := fmt.Sprintf(":%d", envCfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	fmt.Printf("\n🚀 screentimed started\n")
	fmt.Printf("📍 API: http://localhost:%d/api\n", envCfg.Port)
	fmt.Printf("💚 Health check: GET %s\n", envCfg.HealthCheckPath)
	fmt.Printf("📊 Environment: %s\n\n", envCfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	bot.NotifyAdmin(fmt.Sprintf("🟢 screentimed started, %s remaining today",
		engine.FormatDuration(eng.Remaining())))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("⏹ Received %v, shutting down", sig)
		stop()
	case <-rootCtx.Done():
		log.Printf("⏹ Shutdown requested, stopping")
	}

	bot.NotifyAdmin("🔴 screentimed shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	log.Printf("✅ Shutdown complete")
}
