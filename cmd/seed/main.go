package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/hmatsu88yama/scheduler/internal/config"
	"github.com/hmatsu88yama/scheduler/internal/repository"
	"github.com/hmatsu88yama/scheduler/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var yearMonth string

	flag.IntVar(&op, "op", 0, "実行する操作 (1: サンプルデータ投入, 2: 対象月の月次希望投入)")
	flag.StringVar(&yearMonth, "year-month", "", "月次希望を投入する対象月 (YYYY-MM)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("設定の読み込みに失敗しました", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// データベース接続プールの作成
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("データベース接続プールの作成に失敗しました", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open は接続プールを作るだけで実際には接続しないので、明示的に ping する
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("データベースに接続できません", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 1:
		seed.SeedSampleData(repo, cfg.Seed.DoctorPassword)
	case 2:
		if yearMonth == "" {
			slog.Error("-year-month を指定してください")
			return
		}
		seed.SeedSamplePreferences(repo, yearMonth)
	default:
		slog.Error("操作が指定されていないか不正です")
	}
}
