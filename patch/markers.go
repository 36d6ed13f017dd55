package patch

import (
	"path/filepath"
	"strings"
)

// Syntax is a pair of comment delimiters used to build region markers.
type Syntax struct {
	Open  string
	Close string
}

var (
	BlockComment = Syntax{Open: "/*", Close: "*/"}
	HTMLComment  = Syntax{Open: "<!--", Close: "-->"}
)

// StartTag returns e.g. "/* AI_ZONE:button-styles-start */".
func (s Syntax) StartTag(regionID string) string {
	return s.Open + " " + regionID + "-start " + s.Close
}

// EndTag returns e.g. "/* AI_ZONE:button-styles-end */".
func (s Syntax) EndTag(regionID string) string {
	return s.Open + " " + regionID + "-end " + s.Close
}

// SyntaxFor 按文件扩展名给出候选注释语法，按优先级排列。
// HTML 文件内联的 <style>/<script> 也会使用 /* */。
func SyntaxFor(name string) []Syntax {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return []Syntax{HTMLComment, BlockComment}
	default:
		return []Syntax{BlockComment}
	}
}
