package main

import (
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"migrate", "reap-sessions", "send-digest"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err=%v)", name, err)
		}
	}
}

func TestSendDigest_Flags(t *testing.T) {
	cmd := newSendDigestCmd()

	if got := cmd.Flags().Lookup("period").DefValue; got != "daily" {
		t.Errorf("--period default = %q, want daily", got)
	}
	for _, name := range []string{"date", "email", "pace", "honor-subscriptions"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not defined", name)
		}
	}
}
