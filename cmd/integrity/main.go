// Command integrity checks the store for broken references and, with
// -repair, applies the mechanical repairs. It exits 2 while violations
// remain, including after -repair.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"foundersnexus/config"
	"foundersnexus/database"
	"foundersnexus/integrity"
	"foundersnexus/logging"
	"foundersnexus/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	repair := flag.Bool("repair", false, "apply repairs after reporting")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall time limit")
	flag.Parse()

	cfg := config.Load()
	log := logging.NewWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, db, err := database.Connect(ctx, database.Config{URI: cfg.MongoURI, Name: cfg.MongoDatabase}, log)
	if err != nil {
		log.Error(ctx, "failed to connect to MongoDB", "error", err)
		return 1
	}
	defer database.Disconnect(client, log)

	checker := integrity.New(store.NewMongoStore(db), log)
	out := struct {
		Before  integrity.Report   `json:"before"`
		Repairs *integrity.Repairs `json:"repairs,omitempty"`
		After   *integrity.Report  `json:"after,omitempty"`
	}{}

	out.Before, err = checker.Report(ctx)
	if err != nil {
		log.Error(ctx, "integrity check failed", "error", err)
		return 1
	}

	failed := false
	if *repair && !out.Before.Clean() {
		repairs, err := checker.RepairAll(ctx)
		out.Repairs = &repairs
		if err != nil {
			log.Error(ctx, "some repairs failed", "error", err)
			failed = true
		}
		after, err := checker.Report(ctx)
		if err != nil {
			log.Error(ctx, "integrity re-check failed", "error", err)
			return 1
		}
		out.After = &after
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error(ctx, "write report", "error", err)
		failed = true
	}
	return exitCode(out.Before, out.After, failed)
}

// exitCode is 1 when a repair or the output failed, 2 when violations remain
// (before without -repair, after with it) and 0 otherwise. Dangling refs have
// no repair, so they keep the code at 2 even after -repair.
func exitCode(before integrity.Report, after *integrity.Report, failed bool) int {
	switch {
	case failed:
		return 1
	case after != nil && !after.Clean():
		return 2
	case after == nil && !before.Clean():
		return 2
	default:
		return 0
	}
}
