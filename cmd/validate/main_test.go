package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResponseCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"narrative": "Rain.", "hpChange": -1}`)
	checkReq := writeFile(t, dir, "check.json", "```json\n{\"narrative\": \"Jump!\", \"checkRequest\": {\"attribute\": \"dexterity\", \"difficulty\": 15, \"reason\": \"gap\"}}\n```")
	bad := writeFile(t, dir, "bad.json", `{"hpChange": -1}`)

	out, err := run(t, "response", good, checkReq)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "state changes") || !strings.Contains(out, "Dexterity DC 15") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "response", good, bad, filepath.Join(dir, "missing.json"))
	if err == nil {
		t.Fatal("expected error for invalid files")
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("error = %v", err)
	}
	if strings.Count(out, "FAIL") != 2 {
		t.Errorf("expected two FAIL lines:\n%s", out)
	}
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "1.json", `{"narrative": "A goblin slashes you.", "hpChange": -10}`),
		writeFile(t, dir, "2.json", `{"narrative": "Jump.", "checkRequest": {"attribute": "dexterity", "difficulty": 15, "reason": "gap"}, "hpChange": -20}`),
		writeFile(t, dir, "3.json", `{"narrative": "Loot.", "newItems": [{"id": "gem", "name": "Gem", "type": "misc"}], "removedItemIds": ["3"]}`),
	}

	out, err := run(t, append([]string{"replay"}, files...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Status update: HP -10", "check pending: Dexterity DC 15", "Items gained: Gem", "HP 25/35", "[gem] Gem"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Rations") {
		t.Errorf("removed item still listed:\n%s", out)
	}

	out, err = run(t, "replay", "--json", files[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jsonStart := strings.Index(out, "{")
	var c character.Character
	if err := json.Unmarshal([]byte(out[jsonStart:]), &c); err != nil {
		t.Fatalf("expected JSON character: %v\n%s", err, out)
	}
	if c.CurrentStats.HP != 25 {
		t.Errorf("HP = %d, want 25", c.CurrentStats.HP)
	}
}

func TestReplayCommand_StopsOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `nope`)
	if _, err := run(t, "replay", bad); err == nil {
		t.Error("expected error")
	}
}

func TestRequiresFiles(t *testing.T) {
	if _, err := run(t, "response"); err == nil {
		t.Error("expected error without files")
	}
}
