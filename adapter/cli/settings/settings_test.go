package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	prefInfra "github.com/ogenrwotdaniel/focusflow/internal/preferences/infrastructure"
)

func resetFlags() {
	settingsJSON = false
}

func appWithStore() (*cli.App, *prefInfra.MemoryStore) {
	store := prefInfra.NewMemoryStore(prefDomain.Defaults())
	return cli.NewApp(nil, nil, nil, nil, nil, store), store
}

func TestShowCmd_NotConfigured(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	showCmd.SetContext(context.Background())

	err := showCmd.RunE(showCmd, []string{})
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestShowCmd(t *testing.T) {
	resetFlags()
	app, _ := appWithStore()
	cli.SetApp(app)
	defer cli.SetApp(nil)

	var out bytes.Buffer
	showCmd.SetOut(&out)
	showCmd.SetContext(context.Background())

	require.NoError(t, showCmd.RunE(showCmd, []string{}))
	assert.Contains(t, out.String(), "focus_minutes")
	assert.Contains(t, out.String(), "25")
	assert.Contains(t, out.String(), "tree_type")
	assert.Contains(t, out.String(), "oak")
}

func TestShowCmd_JSON(t *testing.T) {
	resetFlags()
	app, _ := appWithStore()
	cli.SetApp(app)
	defer cli.SetApp(nil)

	var out bytes.Buffer
	showCmd.SetOut(&out)
	showCmd.SetContext(context.Background())
	settingsJSON = true

	require.NoError(t, showCmd.RunE(showCmd, []string{}))

	var decoded prefDomain.Preferences
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, prefDomain.Defaults(), decoded)
}

func TestSetCmd(t *testing.T) {
	resetFlags()
	app, store := appWithStore()
	cli.SetApp(app)
	defer cli.SetApp(nil)

	var out bytes.Buffer
	setCmd.SetOut(&out)
	setCmd.SetContext(context.Background())

	require.NoError(t, setCmd.RunE(setCmd, []string{"focus_minutes", "50"}))
	assert.Equal(t, "focus_minutes = 50\n", out.String())

	prefs, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, prefs.FocusMinutes)
}

func TestSetCmd_InvalidValueIsNotSaved(t *testing.T) {
	resetFlags()
	app, store := appWithStore()
	cli.SetApp(app)
	defer cli.SetApp(nil)

	setCmd.SetContext(context.Background())

	err := setCmd.RunE(setCmd, []string{"volume", "150"})
	assert.ErrorIs(t, err, prefDomain.ErrPreferencesInvalid)

	err = setCmd.RunE(setCmd, []string{"colour", "green"})
	assert.ErrorIs(t, err, prefDomain.ErrPreferencesInvalid)

	prefs, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, prefs.Volume)
}
