package generator

import (
	"voicecode/model"
)

// Interpret 把模型原始输出转换成结构化结果：先抽取 JSON，再校验归类。
func Interpret(raw string) (model.GenerationResult, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return model.GenerationResult{}, err
	}
	return Normalize(payload)
}
