package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/analysis"
)

// connect starts s on an in-memory transport and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := s.mcp.Connect(ctx, serverT, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func newTestServer(t *testing.T) (*Server, *analysis.Preference) {
	t.Helper()
	pref, err := analysis.NewPreference(analysis.ProviderAuto)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewServer(Config{}, analysis.NewOrchestrator(nil, nil, pref), pref)
	if err != nil {
		t.Fatal(err)
	}
	return s, pref
}

func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (T, *mcp.CallToolResult) {
	t.Helper()
	var out T
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s) error = %v", name, err)
	}
	if res.IsError {
		return out, res
	}
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
	return out, res
}

func TestNewServer_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	pref := &analysis.Preference{}
	if _, err := NewServer(Config{}, nil, pref); err == nil {
		t.Error("expected error without analyzer")
	}
	if _, err := NewServer(Config{}, analysis.NewOrchestrator(nil, nil, pref), nil); err == nil {
		t.Error("expected error without preference")
	}
}

func TestTools_Listed(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	cs := connect(t, s)

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"analyze_journal_entry", "set_ai_provider", "get_ai_provider"} {
		if !names[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}

func TestAnalyzeJournalEntry_FallsBackToLocal(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	cs := connect(t, s)

	out, res := callTool[analyzeOutput](t, cs, "analyze_journal_entry", map[string]any{
		"entry_text": "Hoy dormí mejor y tuve más paciencia.",
		"goals":      []string{"Dormir 8 horas"},
		"provider":   "gemini",
	})
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	if out.ProviderUsed != "local" || !strings.Contains(out.AnalysisContent, "<strong>Dormir 8 horas</strong>") {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestAnalyzeJournalEntry_RequiresText(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	cs := connect(t, s)

	_, res := callTool[analyzeOutput](t, cs, "analyze_journal_entry", map[string]any{"entry_text": "  "})
	if !res.IsError {
		t.Error("expected a tool error for blank entry_text")
	}
}

func TestProviderTools(t *testing.T) {
	t.Parallel()

	s, pref := newTestServer(t)
	cs := connect(t, s)

	got, _ := callTool[providerOutput](t, cs, "get_ai_provider", map[string]any{})
	if got.Provider != "auto" {
		t.Fatalf("get_ai_provider = %q; want auto", got.Provider)
	}

	set, res := callTool[providerOutput](t, cs, "set_ai_provider", map[string]any{"provider": "openai"})
	if res.IsError || set.Provider != "openai" || pref.Get() != analysis.ProviderOpenAI {
		t.Fatalf("set_ai_provider = %+v, pref = %q", set, pref.Get())
	}

	_, res = callTool[providerOutput](t, cs, "set_ai_provider", map[string]any{"provider": "local"})
	if !res.IsError {
		t.Error("local is not a valid selection")
	}
	if pref.Get() != analysis.ProviderOpenAI {
		t.Errorf("rejected value changed the preference to %q", pref.Get())
	}
}
