package keyboard

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhnyadav/aitoolsbox/internal/tools"
)

func TestToolMenu_OneButtonPerRow(t *testing.T) {
	b := NewBuilder(slog.New(slog.NewTextHandler(io.Discard, nil)))

	markup := b.ToolMenu()
	require.NotNil(t, markup)

	buttons := tools.Buttons()
	require.Len(t, markup.InlineKeyboard, len(buttons))

	for i, row := range markup.InlineKeyboard {
		require.Len(t, row, 1, "row %d", i)
		assert.Equal(t, buttons[i].Label, row[0].Text)
		assert.Equal(t, buttons[i].Token, row[0].Data)
	}
}

func TestToolMenu_AllTokensKnown(t *testing.T) {
	b := NewBuilder(nil)

	for _, row := range b.ToolMenu().InlineKeyboard {
		assert.True(t, tools.IsKnown(row[0].Data), "token %q", row[0].Data)
	}
}
