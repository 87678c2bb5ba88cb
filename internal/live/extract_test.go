package live

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultExtractor() *Extractor {
	return NewExtractor([]string{"main", "article", "#content", ".content"}, 20, 6000)
}

func TestExtractPrefersMainRegion(t *testing.T) {
	html := `<html><head><title>Qonun hujjati</title></head><body>
<nav>Bosh sahifa | Qidiruv</nav>
<main><p>Ushbu qonun maktabga qabul qilish tartibini belgilaydi va barcha hududlarda amal qiladi.</p></main>
<footer>Mualliflik huquqi</footer>
</body></html>`

	title, text, err := defaultExtractor().Extract(html, "https://lex.uz/docs/1")
	require.NoError(t, err)
	assert.Equal(t, "Qonun hujjati", title)
	assert.Contains(t, text, "maktabga qabul qilish tartibini")
	assert.NotContains(t, text, "Bosh sahifa")
	assert.NotContains(t, text, "Mualliflik huquqi")
}

func TestExtractFallsBackWhenSelectorTooShort(t *testing.T) {
	html := `<html><body>
<main>qisqa</main>
<p>Asosiy matn shu yerda joylashgan va u yetarlicha uzun bo'lishi kerak.</p>
</body></html>`

	_, text, err := defaultExtractor().Extract(html, "https://lex.uz/docs/2")
	require.NoError(t, err)
	assert.Contains(t, text, "Asosiy matn shu yerda")
}

func TestExtractTriesSelectorsInOrder(t *testing.T) {
	html := `<html><body>
<div id="content">Identifikator orqali topilgan asosiy kontent bloki, yetarlicha uzun matn.</div>
</body></html>`

	_, text, err := defaultExtractor().Extract(html, "https://lex.uz/docs/3")
	require.NoError(t, err)
	assert.Contains(t, text, "Identifikator orqali topilgan")
}

func TestExtractStripsScriptAndStyle(t *testing.T) {
	html := `<html><body><main>
<script>var x = "yashirin";</script>
<style>.a { color: red }</style>
<p>Ko'rinadigan huquqiy matn, foydalanuvchi uchun yetarlicha mazmunli.</p>
</main></body></html>`

	_, text, err := defaultExtractor().Extract(html, "https://lex.uz/docs/4")
	require.NoError(t, err)
	assert.Contains(t, text, "Ko'rinadigan huquqiy matn")
	assert.NotContains(t, text, "yashirin")
	assert.NotContains(t, text, "color: red")
}

func TestExtractCollapsesBlankRuns(t *testing.T) {
	html := `<html><body><main><p>Birinchi band haqida batafsil ma'lumot.</p>
<br><br><br><br>
<p>Ikkinchi band haqida batafsil ma'lumot.</p></main></body></html>`

	_, text, err := defaultExtractor().Extract(html, "https://lex.uz/docs/5")
	require.NoError(t, err)
	assert.NotContains(t, text, "\n\n\n")
}

func TestExtractRespectsCharacterBudget(t *testing.T) {
	body := strings.Repeat("uzun matn bloklari ", 100)
	html := `<html><body><main><p>` + body + `</p></main></body></html>`

	e := NewExtractor([]string{"main"}, 20, 50)
	_, text, err := e.Extract(html, "https://lex.uz/docs/6")
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(text)), 50)
}

func TestExtractTitleFallbacks(t *testing.T) {
	html := `<html><head><meta property="og:title" content="Ijtimoiy sarlavha"></head>
<body><main><p>Matn bloki, sarlavha uchun og:title ishlatilishi kerak bo'ladi.</p></main></body></html>`

	title, _, err := defaultExtractor().Extract(html, "https://lex.uz/docs/7")
	require.NoError(t, err)
	assert.Equal(t, "Ijtimoiy sarlavha", title)

	html = `<html><body><h1>Birinchi daraja sarlavha</h1>
<main><p>Matn bloki, sarlavha uchun h1 ishlatilishi kerak bo'ladi.</p></main></body></html>`

	title, _, err = defaultExtractor().Extract(html, "https://lex.uz/docs/8")
	require.NoError(t, err)
	assert.Equal(t, "Birinchi daraja sarlavha", title)
}
