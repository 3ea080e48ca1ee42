// sendorder is the operator tool for one-off submissions: it reads a
// platform order JSON file, maps and validates it, and forwards it to
// the POS. One parameterized command instead of per-incident scripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/config"
	"github.com/brmonteiro/saipos-bridge/internal/mapper"
	"github.com/brmonteiro/saipos-bridge/internal/saipos"
	"github.com/brmonteiro/saipos-bridge/internal/shopify"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	var (
		file    = flag.String("file", "", "path to the platform order JSON")
		store   = flag.String("store", "", "override SAIPOS_STORE_CODE")
		key     = flag.String("key", "", "idempotency key; generated when empty")
		dryRun  = flag.Bool("dry-run", false, "map and validate only, do not call the POS")
		timeout = flag.Duration("timeout", 30*time.Second, "request timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *file == "" {
		logger.Error("-file is required")
		os.Exit(2)
	}

	conf := config.New()
	if *store != "" {
		conf.Saipos.StoreCode = *store
	}
	conf.Saipos.Timeout = *timeout

	raw, err := os.ReadFile(*file)
	exitIfErr(logger, "failed to read order file", err)

	var order shopify.Order
	exitIfErr(logger, "failed to parse order file", json.Unmarshal(raw, &order))

	mapped, err := mapper.New(conf.Saipos.StoreCode).Map(order)
	exitIfErr(logger, "failed to map order", err)

	if vr := mapper.Validate(mapped); !vr.Valid {
		for _, msg := range vr.Errors {
			logger.Error("validation failed", slog.String("reason", msg))
		}
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(saipos.NewOrderPayload(mapped), "", "  ")
	exitIfErr(logger, "failed to marshal payload", err)
	fmt.Println(string(payload))

	if *dryRun {
		logger.Info("dry run, not submitting", slog.String("order_id", mapped.OrderID))
		return
	}

	exitIfErr(logger, "invalid pos credentials", validateCreds(conf.Saipos))

	idemKey := *key
	if idemKey == "" {
		idemKey = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := saipos.New(conf.Saipos).Submit(ctx, idemKey, mustCompact(payload))
	exitIfErr(logger, "pos submission failed", err)

	logger.Info("order delivered",
		slog.String("order_id", mapped.OrderID),
		slog.String("idempotency_key", idemKey),
	)
	fmt.Println(string(res))
}

func init() {
	godotenv.Load()
}

// validateCreds fails fast on missing partner credentials instead of
// letting them surface as an opaque POS 4xx at submit time.
func validateCreds(cfg config.Saipos) error {
	return validator.New().Struct(cfg)
}

func mustCompact(payload []byte) []byte {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return payload
	}
	out, err := json.Marshal(v)
	if err != nil {
		return payload
	}
	return out
}

func exitIfErr(logger *slog.Logger, msg string, err error) {
	if err != nil {
		logger.Error(msg, slog.Any("error", err))
		os.Exit(1)
	}
}
