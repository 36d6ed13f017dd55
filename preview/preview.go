package preview

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"

	"voicecode/model"
)

var ErrNoIndex = errors.New("index.html not found in files")

// Assemble 把 style.css 和 app.js 内联进 index.html，得到可直接渲染的单页。
// 文件名查找忽略大小写；没有 </head> 时样式前置，没有 </body> 时脚本追加。
func Assemble(files []model.FileArtifact) (string, error) {
	html, ok := lookup(files, "index.html")
	if !ok {
		return "", ErrNoIndex
	}
	if css, ok := lookup(files, "style.css"); ok {
		style := "<style>\n" + css + "\n</style>\n"
		if strings.Contains(html, "</head>") {
			html = strings.Replace(html, "</head>", style+"</head>", 1)
		} else {
			html = style + html
		}
	}
	if js, ok := lookup(files, "app.js"); ok {
		script := "<script>\n" + js + "\n</script>\n"
		if strings.Contains(html, "</body>") {
			html = strings.Replace(html, "</body>", script+"</body>", 1)
		} else {
			html += "\n" + script
		}
	}
	return html, nil
}

func lookup(files []model.FileArtifact, name string) (string, bool) {
	for _, f := range files {
		if strings.EqualFold(f.Name, name) {
			return f.Content, true
		}
	}
	return "", false
}

// RenderExplanation converts the model's Markdown explanation to HTML.
func RenderExplanation(md string) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
