package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/auth"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/config"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
)

func main() {
	// CLI flags
	force := flag.Bool("force", false, "Overwrite keys that already exist")
	hash := flag.String("hash", "", "Print the bcrypt hash of this passphrase for ADMIN_PASSPHRASE_HASH and exit")
	flag.Parse()

	if *hash != "" {
		h, err := auth.HashPassphrase(*hash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash passphrase: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	cfg := config.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.StoreDriver == store.DriverMemory {
		logger.Fatal("seeding the memory store has no effect; set STORE_DRIVER to file or postgres")
	}

	ctx := context.Background()
	kv, closeStore, err := store.Open(ctx, cfg.StoreDriver, cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	written, err := catalog.NewService(kv, logger).Seed(ctx, *force)
	if err != nil {
		logger.Fatal("seed failed", zap.Strings("written", written), zap.Error(err))
	}
	if len(written) == 0 {
		logger.Info("all keys already exist, nothing written (use -force to overwrite)")
		return
	}
	logger.Info("seed completed", zap.String("driver", cfg.StoreDriver), zap.Strings("keys", written))
}
