package config

import (
	"os"
	"testing"
	"time"
)

const sampleConfig = `
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
server:
  host: 0.0.0.0
  port: "9090"
agent:
  system_prompt: "You manage a mailbox."
  max_tool_cycles: 8
store:
  driver: redis
  redis:
    addr: localhost:6379
    db: 2
    ttl: 24h
mailbox:
  base_url: https://gmail.example.com/v1
  access_token: tok-123
log:
  level: debug
`

// TestLoad verifies that Load unmarshals every configuration section from
// the file named by CONFIG_PATH.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Agent.MaxToolCycles != 8 {
		t.Fatalf("unexpected max_tool_cycles: %d", cfg.Agent.MaxToolCycles)
	}
	if cfg.Store.Driver != "redis" {
		t.Fatalf("unexpected store driver: %s", cfg.Store.Driver)
	}
	if cfg.Store.Redis.TTL != 24*time.Hour {
		t.Fatalf("unexpected redis ttl: %v", cfg.Store.Redis.TTL)
	}
	if cfg.Mailbox.AccessToken != "tok-123" {
		t.Fatalf("unexpected access token: %s", cfg.Mailbox.AccessToken)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
}

// TestLoad_Defaults verifies defaults applied when sections are omitted.
func TestLoad_Defaults(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString("llm:\n  api_key: k\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Agent.MaxToolCycles != 5 {
		t.Fatalf("expected default max_tool_cycles 5, got %d", cfg.Agent.MaxToolCycles)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("expected default memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
}
