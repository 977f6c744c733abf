package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/config"
	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	"github.com/sngm3741/pcb-intake-services/api/internal/infrastructure/store"
	publicapp "github.com/sngm3741/pcb-intake-services/api/internal/public/application"
)

type seedOptions struct {
	envName         string
	submissionCount int
	randomSeed      int64
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Hedy", "Alan", "Radia"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Lamarr", "Turing", "Perlman"}
	boards     = []string{"motor-driver", "sensor-hub", "power-supply", "led-matrix", "usb-bridge", "rf-frontend"}
	notes      = []string{"", "2 layers, 1.6mm, HASL", "4 layers, ENIG please", "Need 10 pcs", "Matte black soldermask", "Impedance control on USB pair"}
)

func main() {
	opts := parseFlags()

	if err := loadEnvFiles(opts.envName); err != nil {
		fmt.Fprintf(os.Stderr, "環境変数の読み込みに失敗しました: %v\n", err)
	}

	cfg := config.Load()
	logger := cfg.ServerLog

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	repo, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("応募ストアへの接続に失敗しました", zap.Error(err))
	}
	defer func() { _ = closeStore(context.Background()) }()

	rng := rand.New(rand.NewSource(opts.randomSeed))
	statuses := domain.Statuses()
	counts := make(map[domain.Status]int)

	for i := 0; i < opts.submissionCount; i++ {
		sub := generateSubmission(rng, cfg.S3Folder, cfg.S3PublicBaseURL)
		if err := repo.Create(ctx, sub); err != nil {
			logger.Fatal("応募データの挿入に失敗しました", zap.Int("index", i), zap.Error(err))
		}
		status := statuses[rng.Intn(len(statuses))]
		if status != domain.StatusNew {
			if _, err := repo.UpdateStatus(ctx, sub.ID, status); err != nil {
				logger.Fatal("ステータス更新に失敗しました", zap.String("id", sub.ID), zap.Error(err))
			}
		}
		counts[status]++
	}

	logger.Info("Seed 完了",
		zap.Int("submissions", opts.submissionCount),
		zap.Int("new", counts[domain.StatusNew]),
		zap.Int("reviewed", counts[domain.StatusReviewed]),
		zap.Int("processing", counts[domain.StatusProcessing]),
		zap.Int("completed", counts[domain.StatusCompleted]),
		zap.String("driver", cfg.StoreDriver),
		zap.String("env", opts.envName),
	)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "env ディレクトリ内の env ファイル名 (例: local, staging)")
	flag.IntVar(&opts.submissionCount, "submissions", 25, "生成する応募数")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "乱数シード（再現用）")
	flag.Parse()

	if opts.submissionCount <= 0 {
		fmt.Fprintln(os.Stderr, "submissions は 1 以上を指定してください")
		os.Exit(2)
	}
	return opts
}

// loadEnvFiles は shared.env と <env>.env を順に読み込み、未設定の環境変数だけを埋める。
func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	files := []string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	}
	for _, file := range files {
		v := viper.New()
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%s の読み込みに失敗しました: %w", file, err)
		}
		for _, key := range v.AllKeys() {
			envKey := strings.ToUpper(key)
			if _, exists := os.LookupEnv(envKey); exists {
				continue
			}
			if err := os.Setenv(envKey, v.GetString(key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func generateSubmission(rng *rand.Rand, folder, publicBaseURL string) *domain.Submission {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	board := boards[rng.Intn(len(boards))]

	exts := []string{".zip", ".pdf", ".png"}
	ext := exts[rng.Intn(len(exts))]
	fileName := fmt.Sprintf("%s-rev%d%s", board, rng.Intn(5)+1, ext)
	key := publicapp.ObjectKey(folder, fileName)

	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = "https://files.example.com"
	}

	return &domain.Submission{
		Name:      first + " " + last,
		Email:     strings.ToLower(first+"."+last) + "@example.com",
		Phone:     fmt.Sprintf("+1-555-%04d", rng.Intn(10000)),
		Notes:     notes[rng.Intn(len(notes))],
		FileName:  fileName,
		FileURL:   base + "/" + key,
		ObjectKey: key,
	}
}
