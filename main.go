package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/crawler"
	"rasp.dep406.ru/mirror/modules/database"
	"rasp.dep406.ru/mirror/modules/index"
	"rasp.dep406.ru/mirror/modules/maiparser"
	"rasp.dep406.ru/mirror/modules/requester"
	"rasp.dep406.ru/mirror/modules/site"
)

var envKeys = []string{
	"MYSQL_USER",
	"MYSQL_PASS",
	"MYSQL_DB",
	"CACHE_PATH",
	"LISTEN_ADDR",
	"CRAWL_SEED",
}

func CheckEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found")
	}
	for _, key := range envKeys {
		if _, exists := os.LookupEnv(key); !exists {
			return fmt.Errorf("lost env key: %s", key)
		}
	}

	return nil
}

func main() {
	if err := CheckEnv(); err != nil {
		log.Fatal(err)
	}
	if origin := os.Getenv("ORIGIN_URL"); origin != "" {
		maiparser.HeadURL = origin
	}

	logs := database.OpenLogs()
	defer logs.CloseAll()
	debug := log.New(io.MultiWriter(os.Stderr, logs.DebugFile), "", log.LstdFlags)
	info := log.New(os.Stderr, "", log.LstdFlags)

	engine, err := database.Connect(database.DB{
		User:   os.Getenv("MYSQL_USER"),
		Pass:   os.Getenv("MYSQL_PASS"),
		Schema: os.Getenv("MYSQL_DB"),
		SQLite: os.Getenv("SQLITE_PATH"),
	}, logs.DBLogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	store := index.NewStore(engine, debug)
	fileCache := cache.NewFileCache(os.Getenv("CACHE_PATH"), debug)
	req := requester.NewRequester(fileCache, store, debug)
	builder := crawler.NewBuilder(req, store, fileCache, info, debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func() {
		seed := os.Getenv("CRAWL_SEED")
		var count int
		var err error
		if id, parseErr := uuid.Parse(seed); parseErr == nil {
			count, err = builder.RebuildFromLector(ctx, id, true)
		} else {
			count, err = builder.RebuildFromGroup(ctx, seed, true)
		}
		if err != nil {
			info.Printf("обход не завершён: %s", err)

			return
		}
		info.Printf("зеркало обновлено, преподавателей: %d", count)
	}

	schedule := os.Getenv("CRAWL_CRON")
	if schedule == "" {
		schedule = "0 4 * * *"
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, rebuild); err != nil {
		log.Fatal(err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := site.NewServer(req, store, fileCache, builder, info, debug)
	if err := server.Run(ctx, os.Getenv("LISTEN_ADDR")); err != nil {
		log.Fatal(err)
	}
}
