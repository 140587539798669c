package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/GiridharSalana/ShreeAdvaya/internal/app"
)

// @title           ShreeAdvaya Admin API
// @version         1.0
// @description     Админ-бэкенд статического сайта-портфолио: батч-коммиты коллекций в git-репозиторий, учётки операторов, медиа.
// @BasePath        /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
