// Package tex produces the typesetter input for an assembled document.
//
// Card factories use the markup helpers ([PromptAndEquation], [ScaleEquation],
// [Color], [Figure], [FigureLeftOfText], [Enumerate], [TaskCard]) to build the
// opaque card markup. The renderer uses [Write] to lay the cards of a
// [model.Document] out as one landscape page per [model.Page].
package tex

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
)

// BaselineImports are required by the page skeleton itself.
var BaselineImports = []string{"graphicx", "qrcode", "xcolor"}

// BaselinePreambles are required by the page skeleton itself. A card
// preamble with the same key replaces the baseline one.
var BaselinePreambles = []model.Preamble{
	{Key: "margin", Markup: `\usepackage[margin=0in]{geometry}`},
	{Key: "parindent", Markup: `\setlength\parindent{0pt}`},
}

// Requirements merges the baseline requirements under the document's own.
// Imports are returned sorted; preambles list the baseline keys first, then
// the document keys in first-registration order.
func Requirements(doc *model.Document) ([]string, []model.Preamble) {
	set := make(map[string]struct{})
	for _, imp := range BaselineImports {
		set[imp] = struct{}{}
	}
	for _, imp := range doc.Imports() {
		set[imp] = struct{}{}
	}
	imports := make([]string, 0, len(set))
	for imp := range set {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	var preambles []model.Preamble
	seen := make(map[string]bool)
	for _, p := range BaselinePreambles {
		if markup, ok := doc.Preamble(p.Key); ok {
			p.Markup = markup
		}
		preambles = append(preambles, p)
		seen[p.Key] = true
	}
	for _, p := range doc.Preambles() {
		if !seen[p.Key] {
			preambles = append(preambles, p)
		}
	}
	return imports, preambles
}

// Write writes the complete typesetter source for doc to w. Card markup is
// normalised to NFC so visually identical input produces identical output.
func Write(w io.Writer, doc *model.Document, style task.Style) error {
	if style != task.Minimal {
		return taskerr.Configurationf("tex.write", "unsupported style %d", int(style))
	}

	imports, preambles := Requirements(doc)
	pages := make([]string, 0, doc.PageCount())
	for _, page := range doc.Pages {
		var sb strings.Builder
		if err := WritePage(&sb, page.Cards[:]); err != nil {
			return err
		}
		pages = append(pages, sb.String())
	}
	return WriteSkeleton(w, imports, preambles, pages)
}

// WriteSkeleton writes the document class, imports, preambles, and the given
// page bodies.
func WriteSkeleton(w io.Writer, imports []string, preambles []model.Preamble, pages []string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, `\documentclass[landscape]{article}`)
	if len(imports) > 0 {
		fmt.Fprintf(bw, "\\usepackage{%s}\n", strings.Join(imports, ","))
	}
	fmt.Fprintln(bw)
	for _, p := range preambles {
		fmt.Fprintf(bw, "%% Begin preamble: %s\n", p.Key)
		fmt.Fprintln(bw, norm.NFC.String(p.Markup))
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, `\begin{document}`)
	for i, page := range pages {
		fmt.Fprintf(bw, "%% Begin page %d\n", i+1)
		fmt.Fprintln(bw, page)
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, `\end{document}`)

	return bw.Flush()
}

// WritePage lays out up to four cards as top-aligned minipages in a 2x2
// grid and ends the page.
func WritePage(w io.Writer, cards []model.Card) error {
	if len(cards) > model.CardsPerPage {
		return fmt.Errorf("too many cards for page: %d", len(cards))
	}
	for i, card := range cards {
		fmt.Fprintln(w, `\begin{minipage}[t][0.48\textheight]{0.5\textwidth}`)
		fmt.Fprintln(w, norm.NFC.String(card.Markup()))
		fmt.Fprintln(w, `\end{minipage}`)
		if i == 1 {
			fmt.Fprintln(w, `\\[0\textheight]`)
		}
	}
	_, err := fmt.Fprintln(w, `\newpage`)
	return err
}

// TaskCard returns the markup of a card: the problem, a spacer of height
// vspace, and the answer as a centred QR code.
func TaskCard(problem, answer, vspace string, style task.Style) (string, error) {
	if style != task.Minimal {
		return "", taskerr.Configurationf("tex.card", "unsupported style %d", int(style))
	}
	var sb strings.Builder
	sb.WriteString(problem)
	sb.WriteString("\n")
	sb.WriteString(Color(".", "white"))
	sb.WriteString(`\\[` + vspace + "]\n")
	sb.WriteString(`\begin{center}\qrcode{` + answer + `}\end{center}` + "\n")
	return sb.String(), nil
}

// PromptAndEquation places prompt above equation, separated by vspace.
func PromptAndEquation(prompt, equation, vspace string) string {
	return prompt + `\\[` + vspace + "]\n\n" + equation
}

// ScaleEquation centres eqn and scales it by factor.
func ScaleEquation(eqn, factor string) string {
	return `\begin{center}\scalebox{` + factor + `}{` + eqn + `}\end{center}`
}

// Color colours content.
func Color(content, color string) string {
	return `\textcolor{` + color + `}{` + content + `}`
}

// Figure includes the image at path. The image must live in the directory
// the typesetter runs in; only its base name without extension is emitted.
func Figure(path, width, height string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return `\includegraphics[width=` + width + `,height=` + height + `,keepaspectratio]{` + name + `}`
}

// FigureLeftOfText places a figure in a narrow column to the left of text.
func FigureLeftOfText(path, text string) string {
	return strings.Join([]string{
		`\begin{minipage}{0.3\textwidth}`,
		Figure(path, "200px", "200px"),
		`\end{minipage}`,
		`\hfill`,
		`\begin{minipage}{0.5\textwidth}`,
		text,
		`\end{minipage}`,
	}, "\n")
}

// Enumerate lists items with (a), (b), ... labels. Requires enumitem.
func Enumerate(items ...string) string {
	lines := make([]string, 0, len(items)+2)
	lines = append(lines, `\begin{enumerate}[label=(\alph*)]`)
	for _, it := range items {
		lines = append(lines, `\item `+it)
	}
	lines = append(lines, `\end{enumerate}`)
	return strings.Join(lines, "\n")
}
