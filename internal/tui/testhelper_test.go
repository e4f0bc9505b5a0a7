package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/services/resources"
	"github.com/habmon/habmon/internal/testutil"
	"github.com/habmon/habmon/internal/util"
)

var testStart = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// newTestService creates a resource service over a migrated in-memory
// database holding a healthy WATER and a critical OXYGEN resource.
func newTestService(t *testing.T) *resources.Service {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Close(t) })

	svc := resources.NewService(db.DB,
		resources.WithClock(util.NewManualClock(testStart)),
		resources.WithDefaultPopulation(10),
	)

	ctx := context.Background()
	for _, in := range []resources.CreateResourceInput{
		{Code: "WATER", CurrentAmount: testutil.Float(48000)},
		{Code: "OXYGEN", CurrentAmount: testutil.Float(10)},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("creating %s: %v", in.Code, err)
		}
	}
	return svc
}

// newTestApp creates an App over newTestService with its window set to
// 120x40 and the initial data loaded.
func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()

	opts = append([]Option{WithClock(util.NewManualClock(testStart))}, opts...)
	app := New(newTestService(t), config.Default(), opts...)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	runCmd(t, app, app.load())

	return app
}

// runCmd executes cmd, feeds its message back into the app and returns
// the follow-up command.
func runCmd(t *testing.T, app *App, cmd tea.Cmd) tea.Cmd {
	t.Helper()

	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := app.Update(cmd())
	return next
}

// press sends a key to the app.
func press(app *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := app.Update(msg)
	return cmd
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}
