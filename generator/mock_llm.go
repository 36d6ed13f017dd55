package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// 生成模式返回带 AI_ZONE 标记的三件套，编辑模式改写按钮样式区域。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("Here is the result.\n\n```json\n")
	if prompt.Mode == ModeEdit {
		sb.WriteString(fmt.Sprintf(`{
  "edits": [
    {
      "file": "style.css",
      "action": "replace_region",
      "region": "AI_ZONE:button-styles",
      "content": "button { background: %s; color: #fff; }"
    }
  ],
  "explain": "Updated the button styles."
}`, mockColor(prompt.User)))
	} else {
		sb.WriteString(`{
  "files": [
    { "name": "index.html", "content": "<!DOCTYPE html>\n<html>\n<head>\n<title>Demo</title>\n</head>\n<body>\n<!-- AI_ZONE:body-start -->\n<button id=\"go\">Go</button>\n<!-- AI_ZONE:body-end -->\n</body>\n</html>\n" },
    { "name": "style.css", "content": "body { font-family: sans-serif; }\n/* AI_ZONE:button-styles-start */\nbutton { background:#ddd; color:#000; }\n/* AI_ZONE:button-styles-end */\n" },
    { "name": "app.js", "content": "document.getElementById('go').addEventListener('click', () => alert('Go!'));\n" }
  ],
  "run": { "command": "serve .", "preview_port": 8080 },
  "explain": "A page with a single **Go** button."
}`)
	}
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

func mockColor(user string) string {
	// 只看用户请求部分，避免命中当前文件内容里的颜色。
	if i := strings.LastIndex(user, "User request:"); i >= 0 {
		user = user[i:]
	}
	lower := strings.ToLower(user)
	for _, c := range []string{"red", "green", "blue", "orange", "purple", "black"} {
		if strings.Contains(lower, c) {
			return c
		}
	}
	return "orange"
}
