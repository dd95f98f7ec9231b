package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"avalon/internal/config"
	"avalon/internal/db"
	"avalon/internal/server"

	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var conn *gorm.DB
	if os.Getenv("DATABASE_URL") != "" {
		opened, err := db.Open()
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		conn = opened
		sqlDB, err := conn.DB()
		if err != nil {
			log.Fatalf("database pool setup failed: %v", err)
		}
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)
	} else {
		log.Println("DATABASE_URL not set; running without persistence")
	}

	srv := server.New(conn, cfg)
	if err := srv.RestoreActiveGames(); err != nil {
		log.Printf("failed to restore games: %v", err)
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("avalon server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
