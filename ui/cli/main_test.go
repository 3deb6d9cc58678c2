// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/intelhub/internal/i18n"
)

// testEnv isolates a test from the user's config and points the database,
// legacy file and data directory at a temp dir. It returns the flags that
// select them.
func testEnv(t *testing.T) (dir string, flags []string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	t.Setenv("INTELHUB_AUTH_BCRYPT_COST", "4")
	t.Chdir(dir)
	i18n.Init("en")
	return dir, []string{
		"--database.type", "sqlite",
		"--database.dsn", filepath.Join(dir, "DATA", "intelhub.db"),
		"--legacy.users_file", filepath.Join(dir, "DATA", "users.txt"),
		"--data.dir", filepath.Join(dir, "DATA"),
	}
}

// executeCommand runs a fresh root command and returns its output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func with(flags []string, args ...string) []string {
	return append(append([]string{}, args...), flags...)
}

func TestRegisterThenLogin(t *testing.T) {
	_, flags := testEnv(t)

	out, err := executeCommand(t, "alice\nsecret123\nsecret123\n", with(flags, "register")...)
	if err != nil {
		t.Fatalf("register failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "User 'alice' registered successfully!") {
		t.Fatalf("unexpected register output: %s", out)
	}

	out, err = executeCommand(t, "alice\nsecret123\n", with(flags, "login")...)
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Welcome, alice!") {
		t.Fatalf("unexpected login output: %s", out)
	}

	out, err = executeCommand(t, "wrongpass1\n", with(flags, "login", "--username", "alice")...)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !strings.Contains(out, "Incorrect password.") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = executeCommand(t, "secret123\n", with(flags, "login", "-u", "nobody")...)
	if !errors.Is(err, ErrRejected) || !strings.Contains(out, "Username 'nobody' was not found.") {
		t.Fatalf("expected not found, got %v: %s", err, out)
	}
}

func TestRegisterRejections(t *testing.T) {
	_, flags := testEnv(t)

	out, err := executeCommand(t, "secret123\nsecret124\n", with(flags, "register", "-u", "carol")...)
	if !errors.Is(err, ErrRejected) || !strings.Contains(out, "Error: Passwords do not match.") {
		t.Fatalf("expected mismatch, got %v: %s", err, out)
	}

	out, err = executeCommand(t, "", with(flags, "register", "-u", "a,b")...)
	if !errors.Is(err, ErrRejected) || !strings.Contains(out, "Username cannot contain a comma.") {
		t.Fatalf("expected comma rejection, got %v: %s", err, out)
	}

	out, err = executeCommand(t, "short\n", with(flags, "register", "-u", "carol")...)
	if !errors.Is(err, ErrRejected) || !strings.Contains(out, "at least 8 characters") {
		t.Fatalf("expected password rejection, got %v: %s", err, out)
	}

	if _, err := executeCommand(t, "secret123\nsecret123\n", with(flags, "register", "-u", "carol")...); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	out, err = executeCommand(t, "secret123\nsecret123\n", with(flags, "register", "-u", "carol")...)
	if !errors.Is(err, ErrRejected) || !strings.Contains(out, "Username 'carol' already exists.") {
		t.Fatalf("expected duplicate, got %v: %s", err, out)
	}
}

func TestStandaloneRegisterWritesLegacyFile(t *testing.T) {
	dir, flags := testEnv(t)

	out, err := executeCommand(t, "secret123\nsecret123\n", with(flags, "--standalone", "register", "-u", "dave")...)
	if err != nil {
		t.Fatalf("register failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "DATA", "users.txt"))
	if err != nil {
		t.Fatalf("read users file: %v", err)
	}
	if !strings.HasPrefix(string(data), "dave,$2") {
		t.Fatalf("unexpected legacy file: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "DATA", "intelhub.db")); !os.IsNotExist(err) {
		t.Fatalf("standalone mode should not create the database, stat err=%v", err)
	}

	out, err = executeCommand(t, "secret123\n", with(flags, "--standalone", "login", "-u", "dave")...)
	if err != nil || !strings.Contains(out, "Welcome, dave!") {
		t.Fatalf("standalone login failed: %v: %s", err, out)
	}
}

func TestMenu(t *testing.T) {
	_, flags := testEnv(t)

	input := strings.Join([]string{
		"9",
		"1", "erin", "secret123", "secret123",
		"2", "erin", "secret123", "",
		"3",
	}, "\n") + "\n"
	out, err := executeCommand(t, input, flags...)
	if err != nil {
		t.Fatalf("menu failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Invalid option",
		"User 'erin' registered successfully!",
		"Welcome, erin!",
		"You are now logged in.",
		"Exiting...",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("menu output lacks %q:\n%s", want, out)
		}
	}
}

func TestMenuEndsOnEOF(t *testing.T) {
	_, flags := testEnv(t)
	if out, err := executeCommand(t, "1\nfrank\n", flags...); err != nil {
		t.Fatalf("expected clean exit on EOF, got %v\n%s", err, out)
	}
}

func TestMigrateAndUsers(t *testing.T) {
	dir, flags := testEnv(t)

	out, err := executeCommand(t, "", with(flags, "migrate")...)
	if err != nil || !strings.Contains(out, "File not found") {
		t.Fatalf("expected missing-file notice, got %v: %s", err, out)
	}

	// Register once in standalone mode to get a real hash into the file.
	if _, err := executeCommand(t, "secret123\nsecret123\n", with(flags, "--standalone", "register", "-u", "grace")...); err != nil {
		t.Fatalf("standalone register failed: %v", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "DATA", "users.txt"), os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("broken-line\n")
	_ = f.Close()

	out, err = executeCommand(t, "", with(flags, "migrate")...)
	if err != nil {
		t.Fatalf("migrate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Migrated 1 of 2 users (0 already present, 1 skipped, 0 failed).") {
		t.Fatalf("unexpected summary: %s", out)
	}
	out, _ = executeCommand(t, "", with(flags, "migrate")...)
	if !strings.Contains(out, "Migrated 0 of 2 users (1 already present") {
		t.Fatalf("second run should migrate nothing: %s", out)
	}

	out, err = executeCommand(t, "secret123\n", with(flags, "login", "-u", "grace")...)
	if err != nil || !strings.Contains(out, "Welcome, grace!") {
		t.Fatalf("migrated user cannot log in: %v: %s", err, out)
	}

	out, err = executeCommand(t, "", with(flags, "users")...)
	if err != nil {
		t.Fatalf("users failed: %v", err)
	}
	if !strings.Contains(out, "grace") || !strings.Contains(out, "Total users: 1") {
		t.Fatalf("unexpected users output: %s", out)
	}
}

func TestIncidentCommands(t *testing.T) {
	_, flags := testEnv(t)

	out, err := executeCommand(t, "", with(flags, "incident", "add", "--type", "Phishing", "--severity", "High", "--date", "2024-01-02", "--description", "fake invoice")...)
	if err != nil || !strings.Contains(out, "Created incident #1") {
		t.Fatalf("add failed: %v: %s", err, out)
	}
	if _, err := executeCommand(t, "", with(flags, "incident", "add", "--type", "Malware", "--severity", "Low")...); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	out, err = executeCommand(t, "", with(flags, "incident", "list")...)
	if err != nil || !strings.Contains(out, "Total incidents: 2") || !strings.Contains(out, "Malware") {
		t.Fatalf("list failed: %v: %s", err, out)
	}

	out, err = executeCommand(t, "", with(flags, "incident", "show", "1")...)
	if err != nil || !strings.Contains(out, "fake invoice") {
		t.Fatalf("show failed: %v: %s", err, out)
	}

	out, err = executeCommand(t, "", with(flags, "incident", "status", "1", "Resolved")...)
	if err != nil || !strings.Contains(out, "Incident #1 is now Resolved.") {
		t.Fatalf("status failed: %v: %s", err, out)
	}

	out, err = executeCommand(t, "", with(flags, "report", "high-severity")...)
	if err != nil || !strings.Contains(out, "Resolved") {
		t.Fatalf("high-severity report failed: %v: %s", err, out)
	}
	out, err = executeCommand(t, "", with(flags, "report", "by-type")...)
	if err != nil || !strings.Contains(out, "Phishing") {
		t.Fatalf("by-type report failed: %v: %s", err, out)
	}
	out, err = executeCommand(t, "", with(flags, "report", "frequent")...)
	if err != nil || !strings.Contains(out, "No matching incidents.") {
		t.Fatalf("frequent report failed: %v: %s", err, out)
	}

	out, err = executeCommand(t, "", with(flags, "incident", "delete", "1")...)
	if err != nil || !strings.Contains(out, "Incident #1 deleted.") {
		t.Fatalf("delete failed: %v: %s", err, out)
	}
	out, err = executeCommand(t, "", with(flags, "incident", "show", "1")...)
	if !errors.Is(err, ErrRejected) || !strings.Contains(out, "Incident #1 was not found.") {
		t.Fatalf("expected not found, got %v: %s", err, out)
	}

	if _, err := executeCommand(t, "", with(flags, "incident", "show", "abc")...); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestSetupLoadsDatasets(t *testing.T) {
	dir, flags := testEnv(t)
	dataDir := filepath.Join(dir, "DATA")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	csv := "date,incident_type,severity,status,description\n" +
		"2024-01-01,Phishing,High,Open,one\n" +
		"2024-01-02,Malware,Low,Closed,two\n"
	if err := os.WriteFile(filepath.Join(dataDir, "cyber_incidents.csv"), []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	tickets := "ticket_id,priority\nT-1,High\n"
	if err := os.WriteFile(filepath.Join(dataDir, "it_tickets.csv"), []byte(tickets), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "", with(flags, "setup")...)
	if err != nil {
		t.Fatalf("setup failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Loaded 2 rows into 'cyber_incidents'.",
		"Loaded 0 rows into 'datasets_metadata'.",
		"Loaded 1 rows into 'it_tickets'.",
		"Database setup complete!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("setup output lacks %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "", with(flags, "load-csv", filepath.Join(dataDir, "it_tickets.csv"), "it_tickets")...)
	if err != nil || !strings.Contains(out, "Loaded 1 rows into 'it_tickets'.") {
		t.Fatalf("load-csv failed: %v: %s", err, out)
	}
	if _, err := executeCommand(t, "", with(flags, "load-csv", filepath.Join(dataDir, "it_tickets.csv"), "users")...); err == nil {
		t.Fatalf("expected load into users to be refused")
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	dir, flags := testEnv(t)

	if _, err := executeCommand(t, "secret123\nsecret123\n", with(flags, "register", "-u", "heidi")...); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := executeCommand(t, "", with(flags, "incident", "add", "--type", "DDoS", "--severity", "High")...); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	backupFile := filepath.Join(dir, "backup.json")
	out, err := executeCommand(t, "", with(flags, "backup", backupFile)...)
	if err != nil || !strings.Contains(out, backupFile+".zst") {
		t.Fatalf("backup failed: %v: %s", err, out)
	}
	data, err := readCompressedBackup(backupFile + ".zst")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if len(data.Users) != 1 || len(data.Incidents) != 1 {
		t.Fatalf("unexpected backup content: %+v", data)
	}

	// Restore into a second database.
	other := append([]string{}, flags...)
	for i := range other {
		if other[i] == "--database.dsn" {
			other[i+1] = filepath.Join(dir, "other.db")
		}
	}
	out, err = executeCommand(t, "", with(other, "restore", backupFile+".zst")...)
	if err != nil || !strings.Contains(out, "1 users and 1 incidents added") {
		t.Fatalf("restore failed: %v: %s", err, out)
	}
	out, err = executeCommand(t, "", with(other, "restore", backupFile+".zst")...)
	if err != nil || !strings.Contains(out, "0 users and 0 incidents added") {
		t.Fatalf("repeat restore should add nothing: %v: %s", err, out)
	}
	out, err = executeCommand(t, "secret123\n", with(other, "login", "-u", "heidi")...)
	if err != nil || !strings.Contains(out, "Welcome, heidi!") {
		t.Fatalf("restored user cannot log in: %v: %s", err, out)
	}
}

func TestMaintain(t *testing.T) {
	_, flags := testEnv(t)
	out, err := executeCommand(t, "", with(flags, "maintain")...)
	if err != nil || !strings.Contains(out, "Database maintenance completed.") {
		t.Fatalf("maintain failed: %v: %s", err, out)
	}
}

func TestInvalidHasherConfig(t *testing.T) {
	_, flags := testEnv(t)
	t.Setenv("INTELHUB_AUTH_HASHER", "md5")
	if _, err := executeCommand(t, "", with(flags, "users")...); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
