package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tflens/modres/pkg/config"
	"github.com/tflens/modres/pkg/getter"
	"github.com/tflens/modres/pkg/loader"
	"github.com/tflens/modres/pkg/loader/localloader"
	"github.com/tflens/modres/pkg/loader/registryloader"
	"github.com/tflens/modres/pkg/loader/urlloader"
	"github.com/tflens/modres/pkg/loader/vcsloader"
	"github.com/tflens/modres/pkg/logging"
	"github.com/tflens/modres/pkg/modcache"
	"github.com/tflens/modres/pkg/registry"
	"github.com/tflens/modres/pkg/versions"
)

func main() {
	logging.Init()
	defer logging.Sync()

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <module-source> [version-constraint]", os.Args[0])
	}
	source := os.Args[1]
	constraint := versions.Latest
	if len(os.Args) > 2 {
		constraint = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	rootDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("Error determining working directory: %v", err)
	}

	cache := modcache.New()
	client := registry.New(cfg.Token, cfg.HTTPTimeout)
	fetcher := getter.NewArchiveFetcher()

	chain := loader.NewChain(cfg.MaxRedirects,
		registryloader.New(cfg, cache, client, fetcher, rootDir),
		vcsloader.New(rootDir, cfg.ExternalModulesDir),
		urlloader.New(fetcher, rootDir, cfg.ExternalModulesDir),
		localloader.New(rootDir),
	)

	result, err := chain.Resolve(context.Background(), loader.ModuleReference{
		Source:            source,
		VersionConstraint: constraint,
	})
	if err != nil {
		log.Fatalf("Error resolving module: %v", err)
	}
	if !result.OK() {
		log.Fatalf("Module %q could not be resolved: %v", result.FailedSource, result.Err)
	}

	fmt.Printf("Directory: %s\n", result.Dir)
	if result.Version != "" {
		fmt.Printf("Version: %s\n", result.Version)
	}
}
