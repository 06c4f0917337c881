package main

import (
	"bytes"
	"testing"
)

func TestRootCommandTree(t *testing.T) {
	root := rootCmd()
	want := []string{"migrate", "seed", "seed-admin", "reconcile", "token"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (%v)", name, err)
		}
	}
}

func TestArgsAreChecked(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"token needs email", []string{"token"}},
		{"seed-admin needs email", []string{"seed-admin"}},
		{"unknown flag", []string{"reconcile", "--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := rootCmd()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			if err := root.Execute(); err == nil {
				t.Error("want error")
			}
		})
	}
}
