package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommandTree(t *testing.T) {
	want := map[string]bool{"migrate": false, "create-admin": false, "complete-shifts": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}

	sub, _, err := rootCmd.Find([]string{"migrate", "down"})
	if err != nil || sub != migrateDownCmd {
		t.Fatalf("migrate down not registered: %v", err)
	}
	if f := sub.Flags().Lookup("steps"); f == nil || f.DefValue != "1" {
		t.Errorf("expected --steps defaulting to 1, got %+v", f)
	}
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"create-admin", "--name", "Root"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "email") {
		t.Errorf("expected missing --email error, got %v", err)
	}
}
