// Основной пакет сервиса Rédacteur. Читает конфигурацию, открывает базу данных
// и запускает HTTP сервер редактора.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/aisa-it/redacteur/internal/redacteur"
	"github.com/aisa-it/redacteur/internal/redacteur/config"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/gormlogger"
	"gorm.io/gorm"
)

var version string = "DEV"

// Пример запуска: go run main.go --trace --atlas
func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	atlas := flag.Bool("atlas", false, "Apply schema.sql with atlas before start (PostgreSQL only)")
	schemaPath := flag.String("schema", "schema.sql", "Schema file for --atlas")
	issueToken := flag.String("issue-token", "", "Print dev token for user id and exit")
	tokenName := flag.String("token-name", "Dev", "Author name for --issue-token")
	flag.Parse()

	PrintBanner()

	cfg := config.ReadConfig()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	if *issueToken != "" {
		token, err := redacteur.GenAuthorToken([]byte(cfg.SecretKey), redacteur.Author{Id: *issueToken, Name: *tokenName}, redacteur.TokenExpiresPeriod)
		if err != nil {
			slog.Error("Issue token", "err", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	slog.Info("Rédacteur start.")

	if *atlas {
		if err := AtlasMigration(cfg, *schemaPath); err != nil {
			slog.Error("Atlas schema apply", "err", err)
			os.Exit(1)
		}
	}

	db, err := dao.Open(cfg.DatabaseDSN, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Fail set settings to conn pool", "err", err)
		os.Exit(1)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 15)

	if err := redacteur.Server(db, cfg, version); err != nil {
		slog.Error("Server", "err", err)
		os.Exit(1)
	}
}

// PrintBanner выводит заголовок с версией сервиса.
func PrintBanner() {
	banner := `
              _            _
 _ __ ___  __| | __ _  ___| |_ ___ _   _ _ __
| '__/ _ \/ _  |/ _  |/ __| __/ _ \ | | | '__|
| | |  __/ (_| | (_| | (__| ||  __/ |_| | |
|_|  \___|\__,_|\__,_|\___|\__\___|\__,_|_|   %s
Documents riches avec blocs personnalisés
----------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}

// AtlasMigration применяет schema.sql через atlas. Без утилиты atlas в системе
// шаг пропускается, схему тогда создает AutoMigrate.
func AtlasMigration(cfg *config.Config, schemaPath string) error {
	if !strings.HasPrefix(cfg.DatabaseDSN, "postgres") {
		slog.Warn("Atlas schema apply supports only PostgreSQL, skip", "dsn", strings.SplitN(cfg.DatabaseDSN, ":", 2)[0])
		return nil
	}

	_, err := exec.LookPath("atlas")
	if err != nil {
		slog.Warn("Atlas cli exec not found in system, skip schema applying", "err", err)
		return nil
	}

	client, err := atlasexec.NewClient(".", "atlas")
	if err != nil {
		return err
	}
	res, err := client.SchemaApply(context.Background(), &atlasexec.SchemaApplyParams{
		URL:         cfg.DatabaseDSN,
		To:          "file://" + schemaPath,
		AutoApprove: true,
	})

	if res != nil && res.Changes.Error != nil {
		fmt.Println("Error statement:")
		fmt.Printf("%s:\n%s\n", res.Changes.Error.Text, res.Changes.Error.Stmt)
	}

	if err != nil {
		return err
	}

	if len(res.Changes.Applied) > 0 {
		fmt.Println("Applied changes:")
		for _, change := range res.Changes.Applied {
			fmt.Println(change)
		}
	}

	return nil
}
