package model

import (
	"time"

	"voicecode/diff"
)

// Request is one inbound generate/edit call.
type Request struct {
	Prompt       string         `json:"prompt"`
	IsEdit       bool           `json:"isEdit"`
	CurrentFiles []FileArtifact `json:"currentFiles,omitempty"`
}

// FileChange 是一次补丁批处理对单个文件造成的行级变化（只读报告）。
type FileChange struct {
	Name  string      `json:"name"`
	Hunks []diff.Hunk `json:"hunks"`
}

// Response is what the caller gets back: the synchronized workspace, never
// the raw model result.
type Response struct {
	Files       []FileArtifact `json:"files"`
	Explain     string         `json:"explain,omitempty"`
	ExplainHTML string         `json:"explain_html,omitempty"`
	IsEdit      bool           `json:"isEdit"`
	Run         *RunHint       `json:"run,omitempty"`
	Warnings    []Warning      `json:"warnings,omitempty"`
	Changes     []FileChange   `json:"changes,omitempty"`
}

// Turn 记录会话中的一次请求。
type Turn struct {
	Prompt    string    `json:"prompt"`
	Mode      string    `json:"mode"`
	Explain   string    `json:"explain,omitempty"`
	Warnings  []Warning `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
