package generator

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"voicecode/model"
)

// wirePayload 是模型输出的宽松形状。encoding/json 对字段名大小写不敏感，
// 未知字段直接忽略；run 单独用 gjson 读取，容忍 "8080" 这类字符串端口。
type wirePayload struct {
	Files       []wireFile `json:"files"`
	Edits       []wireEdit `json:"edits"`
	Explain     string     `json:"explain"`
	Explanation string     `json:"explanation"`
}

type wireFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type wireEdit struct {
	File       string `json:"file"`
	TargetFile string `json:"targetFile"`
	Action     string `json:"action"`
	Region     string `json:"region"`
	RegionID   string `json:"regionId"`
	Content    string `json:"content"`
	NewContent string `json:"newContent"`
}

func (w wireEdit) edit() model.Edit {
	return model.Edit{
		TargetFile: firstNonEmpty(w.File, w.TargetFile),
		Action:     model.EditAction(strings.ToLower(strings.TrimSpace(w.Action))),
		RegionID:   firstNonEmpty(w.Region, w.RegionID),
		NewContent: firstNonEmpty(w.Content, w.NewContent),
	}
}

// Normalize parses an extracted payload into a GenerationResult. A non-empty
// files list wins over edits; neither is ErrEmptyResult.
func Normalize(payload string) (model.GenerationResult, error) {
	if !gjson.Valid(payload) {
		return model.GenerationResult{}, &MalformedPayloadError{Payload: payload, Err: errors.New("invalid JSON")}
	}
	doc := gjson.Parse(payload)
	if !doc.IsObject() {
		return model.GenerationResult{}, &MalformedPayloadError{Payload: payload, Err: errors.New("payload is not a JSON object")}
	}

	var wire wirePayload
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return model.GenerationResult{}, &MalformedPayloadError{Payload: payload, Err: err}
	}

	result := model.GenerationResult{
		Explanation: firstNonEmpty(wire.Explain, wire.Explanation),
		Run:         runHint(doc),
	}
	switch {
	case len(wire.Files) > 0:
		result.Kind = model.ResultFiles
		result.Files = make([]model.FileArtifact, 0, len(wire.Files))
		for _, f := range wire.Files {
			if strings.TrimSpace(f.Name) == "" {
				return model.GenerationResult{}, &MalformedPayloadError{Payload: payload, Err: errors.New("file entry without name")}
			}
			result.Files = append(result.Files, model.FileArtifact{Name: f.Name, Content: f.Content})
		}
	case len(wire.Edits) > 0:
		result.Kind = model.ResultEdits
		result.Edits = make([]model.Edit, 0, len(wire.Edits))
		for _, e := range wire.Edits {
			result.Edits = append(result.Edits, e.edit())
		}
	default:
		return model.GenerationResult{}, ErrEmptyResult
	}
	return result, nil
}

func runHint(doc gjson.Result) *model.RunHint {
	run := getFold(doc, "run")
	if !run.IsObject() {
		return nil
	}
	hint := &model.RunHint{
		Command:     getFold(run, "command").String(),
		PreviewPort: int(getFold(run, "preview_port").Int()),
	}
	if hint.Command == "" && hint.PreviewPort == 0 {
		return nil
	}
	return hint
}

// getFold looks up a direct child key ignoring case.
func getFold(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if strings.EqualFold(k.String(), key) {
			out = v
			return false
		}
		return true
	})
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
