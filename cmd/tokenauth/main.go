package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/tokenauth/internal/auth/app"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	hashKey := pflag.String("hash-issuer-key", "", "print the argon2id hash of an issuer key and exit")
	pepper := pflag.String("pepper", os.Getenv(app.EnvPrefix+"_ISSUER_PEPPER"), "pepper used with --hash-issuer-key")
	pflag.Parse()

	if *hashKey != "" {
		hash, err := cryptox.Hasher{Pepper: *pepper}.Hash(*hashKey)
		if err != nil {
			log.Fatalf("failed to hash issuer key: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
