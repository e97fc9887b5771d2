package main

import (
	"log"
	"log/slog"

	"github.com/pc-cp/minissl-go/internal/config"
	"github.com/pc-cp/minissl-go/internal/dataset"
	"github.com/pc-cp/minissl-go/internal/encoder"
	"github.com/pc-cp/minissl-go/internal/eval"
	"github.com/pc-cp/minissl-go/internal/logging"
	"github.com/pc-cp/minissl-go/internal/report"
)

func main() {
	cfg := config.Load()

	logging.Setup(cfg.Output.Dest, cfg.Output.LogLevel)

	bank, err := dataset.Load(cfg.Data.BankPath)
	if err != nil {
		log.Fatalf("failed to load feature bank: %v", err)
	}
	slog.Info("loaded feature bank", "path", cfg.Data.BankPath, "samples", bank.Len())

	queries, err := dataset.Load(cfg.Data.QueriesPath)
	if err != nil {
		log.Fatalf("failed to load query set: %v", err)
	}
	slog.Info("loaded query set", "path", cfg.Data.QueriesPath, "samples", queries.Len(),
		"precomputed", queries.Features != nil)

	// Only spin up the ONNX runtime when the queries actually need encoding.
	var enc *encoder.Encoder
	if queries.Features == nil {
		if cfg.Data.ModelPath == "" {
			log.Fatal("query set carries raw inputs; set MINISSL_MODEL to an ONNX encoder")
		}
		enc, err = encoder.New(cfg.Data.ModelPath)
		if err != nil {
			log.Fatalf("failed to create encoder: %v", err)
		}
		defer enc.Close()
		slog.Info("loaded encoder", "path", cfg.Data.ModelPath)
	}

	out, err := report.New(cfg.Output.Dest)
	if err != nil {
		log.Fatalf("failed to open output: %v", err)
	}
	defer out.Close()

	engCfg := eval.Config{
		K:           cfg.KNN.K,
		Temperature: cfg.KNN.Temperature,
		Classes:     cfg.KNN.Classes,
		TopK:        cfg.KNN.TopK,
		BatchSize:   cfg.Data.BatchSize,
	}
	var engEnc eval.Encoder
	if enc != nil {
		engEnc = enc
	}
	eng, err := eval.New(bank, engEnc, engCfg)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	summary, err := eng.Run(queries, out)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}
	slog.Info("evaluation finished",
		"total", summary.Total, "correct", summary.Correct, "accuracy", summary.Accuracy)
}
