package generator

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// fenceRegex catches fences the markdown parser does not see as blocks,
// e.g. "```json {...} ```" written inline.
var fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON 从模型的自由文本中取出一段 JSON 候选串。
// 先找 ```json 围栏代码块，找不到再退化为第一个 { 到最后一个 } 的区间。
func ExtractJSON(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrExtractionFailed
	}
	if s, ok := fromFencedBlocks(raw); ok {
		return s, nil
	}
	if m := fenceRegex.FindStringSubmatch(raw); len(m) == 2 {
		return m[1], nil
	}
	if s, ok := braceSpan(raw); ok {
		return s, nil
	}
	return "", ErrExtractionFailed
}

// fromFencedBlocks walks the markdown AST and returns the brace span of the
// first fenced block, tagged json or untagged, whose body opens with "{".
func fromFencedBlocks(raw string) (string, bool) {
	source := []byte(raw)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var found string
	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(block.Language(source)))
		if lang != "" && lang != "json" {
			return ast.WalkSkipChildren, nil
		}

		var content bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		body := strings.TrimSpace(content.String())
		if !strings.HasPrefix(body, "{") {
			return ast.WalkSkipChildren, nil
		}
		if s, ok := braceSpan(body); ok {
			found = s
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	}
	if err := ast.Walk(root, walker); err != nil {
		return "", false
	}
	return found, found != ""
}

func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
