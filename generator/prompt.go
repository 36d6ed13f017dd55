package generator

import (
	"encoding/json"
	"fmt"

	"voicecode/model"
)

// Prompt 表示发送给 LLM 的一次对话：系统指令 + 用户指令。
type Prompt struct {
	Mode   Mode
	System string
	User   string
}

const generateSystemPrompt = `You are a code generator for small HTML/CSS/JS web apps.

You MUST respond with ONLY a JSON object, wrapped in triple backticks.

JSON shape:
{
  "files": [
    { "name": "index.html", "content": "<!DOCTYPE html>..." },
    { "name": "style.css", "content": "/* CSS here */" },
    { "name": "app.js", "content": "// JS here" }
  ],
  "run": {
    "command": "serve /app",
    "preview_port": 8080
  },
  "explain": "Short explanation of what you built."
}

Rules:
- Only generate HTML, CSS and JavaScript.
- Use filenames index.html, style.css and app.js unless the user asks otherwise.
- For parts that might change later (like button styles), wrap them in comment markers:

  /* AI_ZONE:button-styles-start */
  button { background:#ddd; color:#000; }
  /* AI_ZONE:button-styles-end */

  In HTML markup use <!-- AI_ZONE:name-start --> and <!-- AI_ZONE:name-end -->.
- Do NOT output any text outside the JSON.
- Always wrap the JSON in triple backticks ` + "```json ... ```" + `.
`

const editSystemPrompt = `You are a code editor for small HTML/CSS/JS web apps.

You MUST respond with ONLY a JSON object, wrapped in triple backticks.

JSON shape:
{
  "edits": [
    {
      "file": "style.css",
      "action": "replace_region",
      "region": "AI_ZONE:button-styles",
      "content": "button { background: orange; color: white; }"
    }
  ],
  "explain": "Short explanation of what you changed."
}

Rules:
- Use "replace_region" edits targeting existing regions that look like:
    /* AI_ZONE:button-styles-start */
    ... old content ...
    /* AI_ZONE:button-styles-end */
- "region" must match the base name, e.g. "AI_ZONE:button-styles".
- "content" replaces everything between the markers; do not repeat the markers.
- Do NOT regenerate whole files here, only edits.
- Do NOT output anything outside the JSON.
- Always wrap the JSON in triple backticks ` + "```json ... ```" + `.
`

// BuildGeneratePrompt 生成首版项目的提示词。
func BuildGeneratePrompt(request string) Prompt {
	user := fmt.Sprintf(`Create a small HTML/CSS/JS web app based on this request:

%q

The app should be self-contained and use index.html, style.css and app.js.`, request)
	return Prompt{Mode: ModeGenerate, System: generateSystemPrompt, User: user}
}

// BuildEditPrompt 生成编辑模式提示词，附带当前文件（JSON 序列化）。
func BuildEditPrompt(request string, files []model.FileArtifact) (Prompt, error) {
	current, err := json.Marshal(files)
	if err != nil {
		return Prompt{}, fmt.Errorf("encode current files: %w", err)
	}
	user := fmt.Sprintf(`Existing files (JSON):
%s

User request:
%q

Return ONLY the edits needed to satisfy the user request.`, current, request)
	return Prompt{Mode: ModeEdit, System: editSystemPrompt, User: user}, nil
}
