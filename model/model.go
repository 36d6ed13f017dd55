package model

// FileArtifact 是工作区中的一个文件：名称 + 全量文本。
type FileArtifact struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// EditAction is an open enumeration of edit kinds. Consumers must tolerate
// values they do not know.
type EditAction string

const (
	// ReplaceRegion replaces everything between a region's start and end markers.
	ReplaceRegion EditAction = "replace_region"
)

// Edit 描述一次针对某个文件区域的修改。
type Edit struct {
	TargetFile string     `json:"file"`
	Action     EditAction `json:"action"`
	RegionID   string     `json:"region"`
	NewContent string     `json:"content"`
}

// ResultKind tags which variant of GenerationResult is populated.
type ResultKind string

const (
	ResultFiles ResultKind = "files"
	ResultEdits ResultKind = "edits"
)

// RunHint 由模型给出，核心逻辑只透传不解释。
type RunHint struct {
	Command     string `json:"command"`
	PreviewPort int    `json:"preview_port,omitempty"`
}

// GenerationResult is the normalized model output. Exactly one of Files or
// Edits is populated, as indicated by Kind.
type GenerationResult struct {
	Kind        ResultKind     `json:"kind"`
	Files       []FileArtifact `json:"files,omitempty"`
	Edits       []Edit         `json:"edits,omitempty"`
	Explanation string         `json:"explain,omitempty"`
	Run         *RunHint       `json:"run,omitempty"`
}

// WarningKind classifies a non-fatal, per-edit outcome.
type WarningKind string

const (
	WarnRegionNotFound    WarningKind = "region_not_found"
	WarnMalformedRegion   WarningKind = "malformed_region"
	WarnTargetFileMissing WarningKind = "target_file_missing"
	WarnUnsupportedAction WarningKind = "unsupported_action"
	WarnModeMismatch      WarningKind = "mode_mismatch"
)

// Warning 记录被跳过的编辑，请求整体仍然成功。
type Warning struct {
	Kind    WarningKind `json:"kind"`
	File    string      `json:"file,omitempty"`
	Region  string      `json:"region,omitempty"`
	Message string      `json:"message"`
}
