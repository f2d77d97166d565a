package cmd

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/gateway/fakeapi"
	"github.com/linguaku/linguaku/internal/model"
)

type cli struct {
	t   *testing.T
	api *fakeapi.Server
	db  string
}

func newCLI(t *testing.T) *cli {
	t.Setenv("LINGUAKU_STT_PROVIDER", "typed")
	t.Setenv("LINGUAKU_LOG_LEVEL", "error")
	api := fakeapi.New(t)
	api.AddUser("Ana", "ana@example.com", "Secret1!", true)
	api.SetMaterials(
		model.Material{ID: "m1", Title: "Greetings", Level: "Beginner", Text: "Good morning teacher"},
		model.Material{ID: "m2", Title: "Travel", Level: "Intermediate", Text: "Where is the station"},
	)
	return &cli{t: t, api: api, db: filepath.Join(t.TempDir(), "linguaku.db")}
}

// run executes the command tree with stdin and returns stdout.
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(append(args, "--db", c.db, "--api-url", c.api.URL()))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(stdin string, args ...string) string {
	c.t.Helper()
	out, err := c.run(stdin, args...)
	require.NoError(c.t, err, out)
	return out
}

func TestAccountFlow(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	out := c.mustRun("Secret1!\n", "login", "--email", "ana@example.com")
	assert.Contains(t, out, "Signed in as Ana")

	out = c.mustRun("", "whoami")
	assert.Contains(t, out, "ana@example.com")

	out = c.mustRun("", "profile", "set-name", "Ana Maria")
	assert.Contains(t, out, "Ana Maria")

	c.mustRun("", "logout")
	_, err = c.run("", "whoami")
	assert.Error(t, err)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("wrong\n", "login", "--email", "ana@example.com")
	require.Error(t, err)

	_, err = c.run("", "whoami")
	assert.Error(t, err)
}

func TestPracticeFromTypedInput(t *testing.T) {
	c := newCLI(t)
	c.mustRun("Secret1!\n", "login", "--email", "ana@example.com")

	out := c.mustRun("", "materials")
	assert.Contains(t, out, "Greetings")
	assert.Contains(t, out, "2 materials")

	out = c.mustRun("good morning\n\n", "practice", "m1")
	assert.Contains(t, out, "Score: 66")
	assert.Contains(t, out, "[teacher]")
	assert.Equal(t, 1, c.api.HistoryLen())

	out = c.mustRun("", "history", "list")
	assert.Contains(t, out, "Greetings")

	out = c.mustRun("", "progress")
	assert.Contains(t, out, "Today: 1/")

	c.mustRun("", "history", "clear", "--yes")
	assert.Equal(t, 0, c.api.HistoryLen())
}

func TestGoal(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("", "goal")
	assert.Contains(t, out, "Daily goal: 5")

	c.mustRun("", "goal", "10")
	out = c.mustRun("", "goal")
	assert.Contains(t, out, "Daily goal: 10")

	_, err := c.run("", "goal", "7")
	assert.Error(t, err)
}

func TestRequestsAreRecorded(t *testing.T) {
	c := newCLI(t)
	c.mustRun("Secret1!\n", "login", "--email", "ana@example.com")
	c.mustRun("", "health")

	out := c.mustRun("", "requests", "stats")
	assert.Contains(t, out, "/auth/login")
	assert.Contains(t, out, "/health")

	out = c.mustRun("", "requests", "list")
	assert.Contains(t, out, "POST")
}

func TestHistoryDeleteFromPracticeLog(t *testing.T) {
	c := newCLI(t)
	c.mustRun("Secret1!\n", "login", "--email", "ana@example.com")
	c.api.AddHistory(
		model.HistoryRecord{ID: "a", Score: 70, CreatedAt: time.Now()},
		model.HistoryRecord{ID: "b", Score: 80, CreatedAt: time.Now()},
	)

	out := c.mustRun("", "history", "delete", "a", "--practice")
	assert.Contains(t, out, "Deleted a")
	assert.Equal(t, 1, c.api.Hits("DELETE /practice/a"))
	assert.Equal(t, 1, c.api.HistoryLen())

	c.mustRun("", "history", "delete", "b", "--practice=false")
	assert.Equal(t, 1, c.api.Hits("DELETE /history/b"))
	assert.Equal(t, 0, c.api.HistoryLen())
}

func TestProgressFallsBackToServerReport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("Secret1!\n", "login", "--email", "ana@example.com")
	c.api.AddHistory(model.HistoryRecord{ID: "a", Score: 70, CreatedAt: time.Now()})
	c.api.SetInsight(&model.WeeklyInsight{Message: "Nice work", Color: "green", Improvement: 4})
	c.api.Inject("GET /history", fakeapi.Fault{Status: http.StatusInternalServerError})

	out := c.mustRun("", "progress")
	assert.Contains(t, out, "server's weekly summary")
	assert.Contains(t, out, "Today: 1/")
	assert.Contains(t, out, "Nice work (+4 vs last week)")
	assert.Equal(t, 1, c.api.Hits("GET /practice/weekly-performance"))
}
