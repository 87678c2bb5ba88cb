package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsManbalarBoyicha(t *testing.T) {
	raw := "1. Ariza topshiring.\n2. Hujjatlarni tayyorlang.\n\nManbalar bo'yicha:\n- https://lex.uz/docs/1"
	got := Sanitize(raw)
	assert.Equal(t, "1. Ariza topshiring.\n2. Hujjatlarni tayyorlang.", got)
}

func TestSanitizeStripsManbalarColon(t *testing.T) {
	raw := "Javob matni.\n\nManbalar:\nhttps://lex.uz/docs/2"
	got := Sanitize(raw)
	assert.Equal(t, "Javob matni.", got)
}

func TestSanitizeHandlesTypographicApostrophe(t *testing.T) {
	raw := "Javob.\n\nmanbalar bo’yicha: hammasi"
	got := Sanitize(raw)
	assert.Equal(t, "Javob.", got)
}

func TestSanitizeIsCaseInsensitive(t *testing.T) {
	raw := "Javob.\n\nMANBALAR :\n- link"
	got := Sanitize(raw)
	assert.Equal(t, "Javob.", got)
}

func TestSanitizeLeavesCleanTextAlone(t *testing.T) {
	raw := "  1. Birinchi band.\n2. Ikkinchi band.  "
	got := Sanitize(raw)
	assert.Equal(t, "1. Birinchi band.\n2. Ikkinchi band.", got)
}

func TestSanitizeKeepsInlineMentions(t *testing.T) {
	// A mid-answer mention of sources is not a trailing block and stays.
	raw := "Qonun manbalar ro'yxatida keltirilgan.\nYana bir band."
	got := Sanitize(raw)
	assert.Equal(t, raw, got)
}
