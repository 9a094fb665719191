// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package config

import "testing"

func TestLoadAppliesDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker.ExchangeName != "inkstream" {
		t.Fatalf("ExchangeName = %q, want inkstream", cfg.Broker.ExchangeName)
	}
	if cfg.Chunking.MaxChunksPerJob != 1000 {
		t.Fatalf("MaxChunksPerJob = %d, want 1000", cfg.Chunking.MaxChunksPerJob)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INKSTREAM_BROKER_EXCHANGE_NAME", "custom_exchange")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker.ExchangeName != "custom_exchange" {
		t.Fatalf("ExchangeName = %q, want custom_exchange", cfg.Broker.ExchangeName)
	}
}
