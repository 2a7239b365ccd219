package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bizlab-kr/leadbot/internal/cli"
	"github.com/bizlab-kr/leadbot/internal/config"
	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := logging.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	opts := &cli.RootOptions{OpenStore: openQuestionStore}
	if err := cli.NewRootCommand(opts).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openQuestionStore connects to the MongoDB question collection named by the environment.
func openQuestionStore(ctx context.Context) (store.QuestionStore, func(), error) {
	if err := config.LoadConfig(); err != nil {
		return nil, nil, err
	}
	if config.AppConfig.StorageBackend == config.StorageMemory {
		return nil, nil, fmt.Errorf("questions import needs STORAGE_BACKEND=persistent")
	}
	if err := config.InitMongoDB(ctx); err != nil {
		return nil, nil, err
	}
	s := store.NewMongoQuestionStore(config.MongoDB, config.AppConfig.QuestionCollection, logging.Logger)
	if err := s.EnsureIndexes(ctx); err != nil {
		config.CloseConnections(context.Background())
		return nil, nil, err
	}
	return s, func() { config.CloseConnections(context.Background()) }, nil
}
