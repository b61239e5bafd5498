package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/shared"
	tu "github.com/desertthunder/roster/internal/testing"
)

// newTestRunner wires a runner to an in-memory store and a recording gateway.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *tu.RecordingGateway) {
	t.Helper()
	store, broker := tu.NewStore(t)
	gw := &tu.RecordingGateway{}
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		Store:   store,
		Broker:  broker,
		Gateway: gw,
	})
	return runner, output, gw
}

// run executes args against a fresh command tree.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:      "roster",
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Commands:  r.register(),
	}
	return app.Run(context.Background(), append([]string{"roster"}, args...))
}

func mustRun(t *testing.T, r *Runner, args ...string) {
	t.Helper()
	if err := run(t, r, args...); err != nil {
		t.Fatalf("%s: unexpected error: %v", strings.Join(args, " "), err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			gw := &tu.RecordingGateway{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Gateway:    gw,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.gateway != gw {
				t.Error("expected gateway to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("does not open the store eagerly", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.db != nil || runner.store != nil {
				t.Error("expected no database before first use")
			}
			if err := runner.Close(); err != nil {
				t.Errorf("expected Close on an unused runner to succeed, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("%d songs\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "3 songs\n\ndone\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	tu.MustChdir(t, dir)
	dbPath := filepath.Join(dir, "data", "roster.db")
	t.Setenv("ROSTER_DB_PATH", dbPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}

	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
	mustRun(t, runner, "setup", "database", "--config", "config.toml")

	tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	tu.AssertFileExists(t, dbPath)
	if content := tu.MustReadFile(t, filepath.Join(dir, "config.toml")); !strings.Contains(content, "[database]") {
		t.Errorf("expected generated config to contain a database section, got %q", content)
	}
}

func TestSeed(t *testing.T) {
	t.Run("demo data", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")

		if !strings.Contains(output.String(), "✓ Seeded 4 accounts, 5 members, 3 songs, 1 notices, 2 events") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("seed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "team.yaml")
		doc := "accounts:\n  - name: Ana Ruiz\n    handle: \"@ana\"\n    role: Leader\nmembers:\n  - name: Ana Ruiz\n    handle: \"@ana\"\n    role: Leader\n"
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write seed file: %v", err)
		}

		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", path)

		if !strings.Contains(output.String(), "1 accounts, 1 members") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("requires a path or --demo", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		if err := run(t, runner, "seed"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects a path with --demo", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		if err := run(t, runner, "seed", "--demo", "team.yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestReconcileRun(t *testing.T) {
	runner, output, _ := newTestRunner(t)
	mustRun(t, runner, "seed", "--demo")
	output.Reset()

	mustRun(t, runner, "reconcile", "run", "--json")

	var report reportJSON
	if err := json.Unmarshal(output.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report %q: %v", output.String(), err)
	}
	if report.Skipped {
		t.Fatal("expected the pass to run")
	}
	if report.Deleted != 2 || report.Updated != 4 || report.Failed != 0 {
		t.Errorf("expected 2 deletes, 4 updates and no failures, got %+v", report)
	}

	output.Reset()
	mustRun(t, runner, "reconcile", "run")
	if !strings.Contains(output.String(), "Reconciliation") {
		t.Errorf("expected a header, got %q", output.String())
	}

	output.Reset()
	mustRun(t, runner, "reconcile", "run", "--json")
	if err := json.Unmarshal(output.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Deleted+report.Updated != 0 {
		t.Errorf("expected a converged store to need no writes, got %+v", report)
	}
}

func TestTeamCommands(t *testing.T) {
	t.Run("register, confirm and list", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)

		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva", "--instrument", "Bass")
		if !strings.Contains(output.String(), "✓ Registered Eva Ruiz (@eva) as Musician") {
			t.Errorf("unexpected register output %q", output.String())
		}

		output.Reset()
		mustRun(t, runner, "team", "confirm", "--handle", "eva")
		if !strings.Contains(output.String(), "✓ Eva Ruiz confirmed") {
			t.Errorf("unexpected confirm output %q", output.String())
		}

		output.Reset()
		mustRun(t, runner, "team", "list")
		got := output.String()
		if !strings.Contains(got, "1. [x] Eva Ruiz @eva - Musician (Bass)") {
			t.Errorf("expected Eva confirmed in the roster, got %q", got)
		}
		if !strings.Contains(got, "Confirmed: 1/1 musicians (100%)") {
			t.Errorf("expected the confirmation summary, got %q", got)
		}

		output.Reset()
		mustRun(t, runner, "team", "list", "--format", "csv")
		if !strings.HasPrefix(output.String(), "ID,Name,Handle,Role,Instrument,Status,Confirmed\n") {
			t.Errorf("expected CSV header, got %q", output.String())
		}
	})

	t.Run("list writes an export file", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		output.Reset()

		path := filepath.Join(t.TempDir(), "roster.md")
		mustRun(t, runner, "team", "list", "-f", "md", "-o", path)

		if output.Len() != 0 {
			t.Errorf("expected nothing on stdout, got %q", output.String())
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "**Members**: 5") {
			t.Errorf("unexpected export %q", content)
		}
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		err := run(t, runner, "team", "register", "--name", "X", "--handle", "@x", "--role", "Admin")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva")
		err := run(t, runner, "team", "confirm", "--handle", "@eva", "--password", "nope")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("leader removes a member", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Daniela Rojas", "--handle", "@daniela", "--role", "Leader")
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva")
		output.Reset()

		mustRun(t, runner, "team", "remove", "--as", "@daniela", "@eva")
		if !strings.Contains(output.String(), "✓ Removed Eva Ruiz") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := run(t, runner, "team", "remove", "--as", "@daniela", "@eva"); !errors.Is(err, shared.ErrMemberNotFound) {
			t.Errorf("expected ErrMemberNotFound for a removed member, got %v", err)
		}
	})

	t.Run("musician cannot remove", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva")
		mustRun(t, runner, "team", "register", "--name", "Luis Paz", "--handle", "@luis")

		if err := run(t, runner, "team", "remove", "--as", "@eva", "@luis"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestBoardCommands(t *testing.T) {
	t.Run("songs for one musician", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		output.Reset()

		mustRun(t, runner, "songs", "list", "--for", "@daniela")
		got := output.String()
		if !strings.Contains(got, "Hillsong Worship - Hosanna") {
			t.Errorf("expected Hosanna, got %q", got)
		}
		if strings.Contains(got, "Oceans") {
			t.Errorf("expected only Daniela's songs, got %q", got)
		}
	})

	t.Run("leader announcement", func(t *testing.T) {
		runner, output, gw := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		output.Reset()

		mustRun(t, runner, "songs", "add", "--title", "Firm Foundation", "--assign", "@lucia", "--as", "@daniela")
		if !strings.Contains(output.String(), "✓ Added song Firm Foundation") {
			t.Errorf("unexpected output %q", output.String())
		}

		sent := gw.Sent()
		if len(sent) != 1 {
			t.Fatalf("expected one announcement, got %d", len(sent))
		}
		if sent[0].Title != "New Song" || !strings.Contains(sent[0].Body, "Daniela Rojas just uploaded a new song: Firm Foundation") {
			t.Errorf("unexpected announcement %+v", sent[0])
		}

		output.Reset()
		mustRun(t, runner, "notify", "read")
		if !strings.Contains(output.String(), "✓ Marked 1 notifications read") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("musicians cannot announce", func(t *testing.T) {
		runner, _, gw := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")

		err := run(t, runner, "notices", "add", "--title", "Hi", "--as", "@lucia")
		if !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		if len(gw.Sent()) != 0 {
			t.Error("expected no announcement")
		}
	})

	t.Run("events without announcement", func(t *testing.T) {
		runner, output, gw := newTestRunner(t)
		mustRun(t, runner, "events", "add", "--title", "Retreat", "--date", "2026-11-07", "--kind", "Meeting")

		if !strings.Contains(output.String(), "✓ Scheduled Retreat on 2026-11-07") {
			t.Errorf("unexpected output %q", output.String())
		}
		if len(gw.Sent()) != 0 {
			t.Error("expected no announcement without --as")
		}
	})

	t.Run("rejects a bad date", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		if err := run(t, runner, "events", "add", "--title", "Retreat", "--date", "next week"); err == nil {
			t.Error("expected an invalid date to fail")
		}
	})
}

func TestNotifyCommands(t *testing.T) {
	t.Run("send", func(t *testing.T) {
		runner, output, gw := newTestRunner(t)
		mustRun(t, runner, "notify", "send", "--title", "Hello", "--body", "Rehearsal at 7", "--to", "lucia")

		if !strings.Contains(output.String(), `✓ Sent "Hello" (id test-notification, 1 recipients)`) {
			t.Errorf("unexpected output %q", output.String())
		}
		sent := gw.Sent()
		if len(sent) != 1 || sent[0].URL != "/" || sent[0].ExternalIDs[0] != "lucia" {
			t.Errorf("unexpected messages %+v", sent)
		}
	})

	t.Run("send through OneSignal", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"id":"abc-123","recipients":12}`)),
			Header:     make(http.Header),
		}, nil)

		config := shared.DefaultConfig()
		config.Notifications.Provider = "onesignal"
		config.Notifications.OneSignal.AppID = "app"
		config.Notifications.OneSignal.APIKey = "key"

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:     config,
			Logger:     shared.NewLogger(io.Discard),
			Output:     output,
			HTTPClient: &http.Client{Transport: rt},
		})

		mustRun(t, runner, "notify", "send", "--title", "Hello", "--body", "World")
		if !strings.Contains(output.String(), "id abc-123, 12 recipients") {
			t.Errorf("unexpected output %q", output.String())
		}
		if len(rt.Requests) != 1 || rt.Requests[0].Header.Get("Authorization") != "Basic key" {
			t.Errorf("unexpected requests %+v", rt.Requests)
		}
	})

	t.Run("remind dry run", func(t *testing.T) {
		runner, output, gw := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		output.Reset()

		mustRun(t, runner, "notify", "remind", "--dry-run")
		got := output.String()
		if !strings.Contains(got, "Planned 1 reminders") {
			t.Errorf("expected one reminder before reconciliation, got %q", got)
		}
		if !strings.Contains(got, "1. Daniela Rojas (assigned): You have 1 assigned: Hosanna") {
			t.Errorf("unexpected plan %q", got)
		}
		if len(gw.Sent()) != 0 {
			t.Error("expected a dry run to send nothing")
		}
	})

	t.Run("remind after reconciliation", func(t *testing.T) {
		runner, output, gw := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		mustRun(t, runner, "reconcile", "run")
		output.Reset()

		mustRun(t, runner, "notify", "remind", "--workers", "2", "--rate", "100")
		got := output.String()
		if !strings.Contains(got, "Planned 5 reminders") {
			t.Errorf("expected backfilled handles to be reachable, got %q", got)
		}
		if !strings.Contains(got, "Delivered 5/5 reminders") {
			t.Errorf("unexpected summary %q", got)
		}
		if len(gw.Sent()) != 5 {
			t.Errorf("expected 5 deliveries, got %d", len(gw.Sent()))
		}
	})

	t.Run("remind reports failures", func(t *testing.T) {
		runner, _, gw := newTestRunner(t)
		gw.Err = shared.ErrGatewayRequest
		mustRun(t, runner, "seed", "--demo")

		if err := run(t, runner, "notify", "remind", "--rate", "100"); err == nil {
			t.Error("expected failed deliveries to fail the command")
		}
	})
}

func TestTeamProfileAndLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("profile syncs the roster entry", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva", "--instrument", "Bass")
		output.Reset()

		mustRun(t, runner, "team", "profile", "--handle", "@eva", "--name", "Eva María Ruiz", "--instrument", "Cello", "--push-token", "tok-1")
		if !strings.Contains(output.String(), "✓ Updated profile for @eva") {
			t.Errorf("unexpected output %q", output.String())
		}

		accounts, err := runner.store.Accounts(ctx)
		if err != nil {
			t.Fatalf("failed to list accounts: %v", err)
		}
		if len(accounts) != 1 || accounts[0].DisplayName != "Eva María Ruiz" || accounts[0].PushToken != "tok-1" {
			t.Errorf("unexpected account %+v", accounts)
		}

		members, err := runner.store.Members(ctx)
		if err != nil {
			t.Fatalf("failed to list members: %v", err)
		}
		if len(members) != 1 || members[0].DisplayName != "Eva María Ruiz" || members[0].Instrument != "Cello" {
			t.Errorf("expected the roster entry to follow the profile, got %+v", members[0])
		}
	})

	t.Run("new password replaces the old one", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva")
		mustRun(t, runner, "team", "profile", "--handle", "@eva", "--new-password", "s3cret")

		if err := run(t, runner, "team", "confirm", "--handle", "@eva"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected the old password to fail, got %v", err)
		}
		mustRun(t, runner, "team", "confirm", "--handle", "@eva", "--password", "s3cret")
	})

	t.Run("profile needs a change", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva")

		if err := run(t, runner, "team", "profile", "--handle", "@eva"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("leave removes account and roster entry", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "team", "register", "--name", "Daniela Rojas", "--handle", "@daniela", "--role", "Leader")
		mustRun(t, runner, "team", "register", "--name", "Eva Ruiz", "--handle", "@eva")
		output.Reset()

		mustRun(t, runner, "team", "leave", "--handle", "@eva")
		if !strings.Contains(output.String(), "✓ @eva left the team") {
			t.Errorf("unexpected output %q", output.String())
		}

		accounts, err := runner.store.Accounts(ctx)
		if err != nil {
			t.Fatalf("failed to list accounts: %v", err)
		}
		members, err := runner.store.Members(ctx)
		if err != nil {
			t.Fatalf("failed to list members: %v", err)
		}
		if len(accounts) != 1 || accounts[0].Handle != "@daniela" {
			t.Errorf("expected only Daniela's account, got %+v", accounts)
		}
		if len(members) != 1 || members[0].DisplayName != "Daniela Rojas" {
			t.Errorf("expected only Daniela's roster entry, got %+v", members)
		}

		if err := run(t, runner, "team", "leave", "--handle", "@eva"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected a removed account to fail authentication, got %v", err)
		}
	})
}

func TestBoardEditing(t *testing.T) {
	ctx := context.Background()

	t.Run("songs update by title", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		output.Reset()

		mustRun(t, runner, "songs", "update", "--as", "@daniela", "--key", "F", "--assign", "@lucia", "hosanna")
		if !strings.Contains(output.String(), "✓ Updated song Hosanna") {
			t.Errorf("unexpected output %q", output.String())
		}

		songs, err := runner.store.Songs(ctx)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		hosanna := songs[0]
		if hosanna.Title != "Hosanna" || hosanna.Key != "F" || hosanna.Artist != "Hillsong Worship" {
			t.Errorf("expected only the key to change, got %+v", hosanna)
		}
		if len(hosanna.AssignedIdentifiers) != 1 || hosanna.AssignedIdentifiers[0] != "@lucia" {
			t.Errorf("expected assignments replaced, got %v", hosanna.AssignedIdentifiers)
		}
	})

	t.Run("songs update validates", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")

		if err := run(t, runner, "songs", "update", "--as", "@daniela", "--category", "Party", "Oceans"); err == nil {
			t.Error("expected an unknown category to fail")
		}
		if err := run(t, runner, "songs", "update", "--as", "@daniela", "Oceans"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument without changes, got %v", err)
		}
		if err := run(t, runner, "songs", "update", "--as", "@lucia", "--key", "G", "Oceans"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden for a musician, got %v", err)
		}
		if err := run(t, runner, "songs", "update", "--key", "G", "Oceans"); err == nil {
			t.Error("expected --as to be required")
		}
	})

	t.Run("songs delete by id", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")

		songs, err := runner.store.Songs(ctx)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		output.Reset()

		mustRun(t, runner, "songs", "delete", "--as", "@daniela", songs[1].ID())
		if !strings.Contains(output.String(), "✓ Deleted song Oceans") {
			t.Errorf("unexpected output %q", output.String())
		}

		left, err := runner.store.Songs(ctx)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(left) != 2 {
			t.Errorf("expected 2 songs left, got %d", len(left))
		}

		if err := run(t, runner, "songs", "delete", "--as", "@daniela", "Oceans"); err == nil {
			t.Error("expected a deleted song to be gone")
		}
	})

	t.Run("notices list and delete", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		mustRun(t, runner, "notices", "add", "--title", "Bring your charts")
		output.Reset()

		mustRun(t, runner, "notices", "list")
		got := output.String()
		if !strings.Contains(got, "Notices: 2") || !strings.Contains(got, "1. [pinned] Rehearsal moved (Schedule)") {
			t.Errorf("expected the pinned notice first, got %q", got)
		}

		output.Reset()
		mustRun(t, runner, "notices", "delete", "--as", "@daniela", "Bring your charts")
		output.Reset()
		mustRun(t, runner, "notices", "list", "-f", "csv")
		if strings.Contains(output.String(), "Bring your charts") {
			t.Errorf("expected the notice to be deleted, got %q", output.String())
		}
	})

	t.Run("events list in date order and delete", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		mustRun(t, runner, "events", "add", "--title", "Planning", "--date", "2026-10-01", "--kind", "Meeting")
		output.Reset()

		mustRun(t, runner, "events", "list")
		got := output.String()
		if !strings.Contains(got, "1. 2026-10-01 Planning [Meeting]") || !strings.Contains(got, "2. 2026-10-18 10:00 Sunday service [Service] @ Main hall") {
			t.Errorf("expected events in date order, got %q", got)
		}

		if err := run(t, runner, "events", "delete", "--as", "@tomas", "Planning"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
		mustRun(t, runner, "events", "delete", "--as", "@daniela", "Planning")

		events, err := runner.store.Events(ctx)
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("expected 2 events left, got %d", len(events))
		}
	})

	t.Run("notification feed", func(t *testing.T) {
		runner, output, _ := newTestRunner(t)
		mustRun(t, runner, "seed", "--demo")
		mustRun(t, runner, "songs", "add", "--title", "Firm Foundation", "--as", "@daniela")
		mustRun(t, runner, "events", "add", "--title", "Retreat", "--date", "2026-11-07", "--as", "@daniela")
		output.Reset()

		mustRun(t, runner, "notify", "list")
		got := output.String()
		if !strings.Contains(got, "Notifications: 2 (2 unread)") {
			t.Errorf("unexpected header %q", got)
		}
		if !strings.Contains(got, "1. [*] New Event Scheduled: Daniela Rojas scheduled a new event: Retreat") {
			t.Errorf("expected the newest notification first, got %q", got)
		}

		mustRun(t, runner, "notify", "read")
		output.Reset()
		mustRun(t, runner, "notify", "list", "--unread")
		if !strings.Contains(output.String(), "Notifications: 0 (0 unread)") {
			t.Errorf("expected no unread notifications, got %q", output.String())
		}
	})
}
