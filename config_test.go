package snipwatch_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/snipwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Interval(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		seconds int
		want    time.Duration
	}{
		"configured":      {seconds: 60, want: time.Minute},
		"unset":           {seconds: 0, want: 300 * time.Second},
		"negative":        {seconds: -10, want: 300 * time.Second},
		"below floor":     {seconds: 2, want: 5 * time.Second},
		"exactly floor":   {seconds: 5, want: 5 * time.Second},
		"one above floor": {seconds: 6, want: 6 * time.Second},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, snipwatch.Settings{IntervalSeconds: tt.seconds}.Interval())
		})
	}
}

func TestConfig_Add_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	cfg := snipwatch.DefaultConfig()
	first := snipwatch.Snippet{ID: "id-1", FileURL: "https://github.com/o/r/blob/main/a.go#L1"}
	require.NoError(t, cfg.Add(first))

	tests := map[string]snipwatch.Snippet{
		"same reference":        {ID: "id-2", FileURL: first.FileURL},
		"same reference padded": {ID: "id-3", FileURL: "  " + first.FileURL + " "},
		"same id":               {ID: "id-1", FileURL: "github.com/o/r/blob/main/a.go#L1"},
	}
	for name, s := range tests {
		err := cfg.Add(s)
		var dup *snipwatch.DuplicateReferenceError
		require.True(t, errors.As(err, &dup), name)
		assert.Equal(t, "id-1", dup.ID, name)
	}
	assert.Len(t, cfg.Snippets, 1)
}

func TestConfig_RemoveByURL(t *testing.T) {
	t.Parallel()

	cfg := snipwatch.DefaultConfig()
	require.NoError(t, cfg.Add(snipwatch.Snippet{ID: "a", FileURL: "https://github.com/o/r/blob/main/a.go#L1"}))
	require.NoError(t, cfg.Add(snipwatch.Snippet{ID: "b", FileURL: "https://github.com/o/r/blob/main/b.go#L1"}))

	assert.False(t, cfg.RemoveByURL("https://github.com/o/r/blob/main/c.go#L1"))
	assert.True(t, cfg.RemoveByURL(" https://github.com/o/r/blob/main/a.go#L1 "))
	require.Len(t, cfg.Snippets, 1)
	assert.Equal(t, "b", cfg.Snippets[0].ID)
	assert.Nil(t, cfg.FindByURL("https://github.com/o/r/blob/main/a.go#L1"))
	assert.NotNil(t, cfg.FindByID("b"))
}

func TestChatID_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string
		want  snipwatch.ChatID
	}{
		"string":          {`"12345"`, "12345"},
		"negative number": {`-1001234567890`, "-1001234567890"},
		"padded string":   {`" 42 "`, "42"},
		"empty string":    {`""`, ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var s snipwatch.Settings
			require.NoError(t, json.Unmarshal([]byte(`{"telegram_chat_id":`+tt.input+`}`), &s))
			assert.Equal(t, tt.want, s.TelegramChatID)
		})
	}
}

func TestChatID_UnmarshalJSON_RejectsFractions(t *testing.T) {
	t.Parallel()

	var s snipwatch.Settings
	assert.Error(t, json.Unmarshal([]byte(`{"telegram_chat_id":1.5}`), &s))
}

func TestChatID_EncodesAsString(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(snipwatch.Settings{TelegramChatID: "-100"})

	require.NoError(t, err)
	assert.Contains(t, string(data), `"telegram_chat_id":"-100"`)
}
