package patch

import (
	"fmt"

	"voicecode/model"
)

// Apply 依次把 edits 应用到 content 上，后一个编辑看到前一个编辑的结果。
// 找不到标记、标记顺序颠倒或动作未知的编辑会被跳过并记录 warning，
// 其余编辑照常执行。name 用来选择注释语法，也写进 warning。
func Apply(name, content string, edits []model.Edit) (string, []model.Warning) {
	scanner := NewScanner(name)
	var warnings []model.Warning
	for _, e := range edits {
		action := e.Action
		if action == "" {
			action = model.ReplaceRegion
		}
		if action != model.ReplaceRegion {
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnUnsupportedAction,
				File:    name,
				Region:  e.RegionID,
				Message: fmt.Sprintf("unsupported edit action %q", e.Action),
			})
			continue
		}

		m := scanner.Find(content, e.RegionID)
		switch {
		case m.Malformed:
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnMalformedRegion,
				File:    name,
				Region:  e.RegionID,
				Message: fmt.Sprintf("end marker %q precedes start marker", m.Syntax.EndTag(e.RegionID)),
			})
			continue
		case !m.Found:
			warnings = append(warnings, model.Warning{
				Kind:    model.WarnRegionNotFound,
				File:    name,
				Region:  e.RegionID,
				Message: fmt.Sprintf("region markers for %q not found", e.RegionID),
			})
			continue
		}
		content = replaceRegion(content, m, e.NewContent)
	}
	return content, warnings
}

func replaceRegion(content string, m Match, body string) string {
	return content[:m.StartTagEnd] + "\n" + body + "\n" + content[m.EndTagStart:]
}
