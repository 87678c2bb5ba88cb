package prompt

import (
	"fmt"
	"strings"
)

// System is the fixed instruction block: answer only from the supplied
// passages, 3-7 practical numbered points, Uzbek, no headings and no links
// in the body (sources are displayed separately, out of band).
const System = "Siz O'zbekiston ta'lim tizimi bo'yicha yordamchi huquqiy konsultantsiz. " +
	"Faqat berilgan parchalar matniga tayaning. " +
	"Javobni 3–7 bandli aniq, amaliy nuqtalarda yozing. " +
	"Hech qanday sarlavha qo'ymang (masalan, 'Manbalar', 'Manbalar bo'yicha' kabilar YO'Q). " +
	"Matn ichida hech qanday havola yoki [sarlavha — URL] keltirmang. " +
	"Hujjat nomi/raqami/sanasini zudlik bilan eslatish mumkin, ammo URL yozmang. " +
	"Faqat javobni yozing; manbalarni men alohida ko'rsataman. O'zbek tilida yozing."

const separator = "\n\n---\n\n"

// Passage is one context block rendered into the user message.
type Passage struct {
	Title string
	URL   string
	Text  string
}

// Builder assembles the grounded user message. MaxChunkChars bounds the
// rendered text of each passage so total prompt size stays bounded no
// matter how long the indexed chunk is.
type Builder struct {
	MaxChunkChars int
}

// New creates a builder with the given per-passage character cap.
func New(maxChunkChars int) *Builder {
	return &Builder{MaxChunkChars: maxChunkChars}
}

// User renders the question plus the ordinal-labelled passages. Each
// passage text is truncated exactly once, here.
func (b *Builder) User(question string, passages []Passage) string {
	blocks := make([]string, 0, len(passages))
	for i, p := range passages {
		text := Truncate(p.Text, b.MaxChunkChars)
		blocks = append(blocks, fmt.Sprintf("### P %d\nSarlavha: %s\nURL: %s\n\n%s\n", i+1, p.Title, p.URL, text))
	}
	return "Savol: " + question + "\n\n" +
		"Quyidagi parchalar mavjud (faqat ulardan foydalaning). " +
		"Faqat javobni bering, manba bo'limlari yoki havolalar YO'Q:\n\n" +
		strings.Join(blocks, separator)
}

// Truncate cuts s to at most max characters (runes, so multi-byte Uzbek and
// Cyrillic text is never split mid-character).
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
