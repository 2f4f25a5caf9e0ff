package orchestrator_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/aperturegate/capgraph"
	"github.com/jonwraymond/aperturegate/embedding"
	"github.com/jonwraymond/aperturegate/gate"
	"github.com/jonwraymond/aperturegate/orchestrator"
	"github.com/jonwraymond/aperturegate/semindex"
	"github.com/jonwraymond/aperturegate/toolcat"
)

func ExampleSemanticOrchestrator_Discover() {
	registry := toolcat.NewStaticRegistry(
		toolcat.Tool{ID: "fs.read_file", BackendID: "files", BackendName: "files", Name: "read_file", Description: "read a file from disk"},
		toolcat.Tool{ID: "fs.write_file", BackendID: "files", BackendName: "files", Name: "write_file", Description: "write a file to disk"},
		toolcat.Tool{ID: "mail.send", BackendID: "mail", BackendName: "mail", Name: "send_email", Description: "send an email"},
	)

	orch := orchestrator.New(
		registry,
		embedding.NewHashingModel(32),
		semindex.NewFlatIndex(),
		nil,
		gate.NewRegistry(gate.DefaultConfig(), nil),
		capgraph.New(),
		orchestrator.DefaultConfig(),
	)

	ctx := context.Background()
	if err := orch.Initialize(ctx); err != nil {
		fmt.Println("init error:", err)
		return
	}

	results, err := orch.Discover(ctx, "open a document on disk", orchestrator.Context{})
	if err != nil {
		fmt.Println("discover error:", err)
		return
	}

	fmt.Println("found results:", len(results) > 0)
	// Output:
	// found results: true
}

func ExampleSemanticOrchestrator_Plan() {
	registry := toolcat.NewStaticRegistry()
	orch := orchestrator.New(
		registry,
		embedding.NewHashingModel(8),
		semindex.NewFlatIndex(),
		nil,
		gate.NewRegistry(gate.DefaultConfig(), nil),
		capgraph.New(),
		orchestrator.DefaultConfig(),
	)

	ctx := context.Background()
	if err := orch.Initialize(ctx); err != nil {
		fmt.Println("init error:", err)
		return
	}

	plan, err := orch.Plan(ctx, nil)
	if err != nil {
		fmt.Println("plan error:", err)
		return
	}

	fmt.Println("stages:", len(plan.Stages))
	// Output:
	// stages: 0
}
