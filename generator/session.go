package generator

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"voicecode/logging"
	"voicecode/model"
	"voicecode/preview"
	"voicecode/workspace"
)

// Session 持有一个工作区及其多轮生成/编辑上下文。
// Run 在会话内串行执行，保证同一工作区同一时刻只有一个写入者。
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	ws      *workspace.Workspace
	agent   *Agent
	history []model.Turn
	logger  *slog.Logger
}

// NewSession 创建会话；工作区目录由 Ensure 或第一次 Run 创建。
func NewSession(id string, ws *workspace.Workspace, agent *Agent, logger *slog.Logger) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		ws:        ws,
		agent:     agent,
		logger:    logging.OrNop(logger).With("component", "session", "workspace", id),
	}
}

// Run handles one request end to end and returns the synchronized workspace.
func (s *Session) Run(ctx context.Context, req model.Request) (model.Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return model.Response{}, ErrPromptRequired
	}
	if s.agent == nil {
		return model.Response{}, errors.New("session has no agent")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ws.Ensure(ctx); err != nil {
		return model.Response{}, err
	}

	var current, seed []model.FileArtifact
	if req.IsEdit {
		var err error
		current, seed, err = s.editBase(ctx, req.CurrentFiles)
		if err != nil {
			return model.Response{}, err
		}
	}
	editMode := len(current) > 0

	result, err := s.agent.Generate(ctx, req.Prompt, current)
	if err != nil {
		return model.Response{}, err
	}

	// 模型返回后的写盘不随请求取消。
	ctx = context.WithoutCancel(ctx)

	resp := model.Response{
		Explain: result.Explanation,
		Run:     result.Run,
	}
	switch result.Kind {
	case model.ResultFiles:
		if editMode {
			resp.Warnings = append(resp.Warnings, model.Warning{
				Kind:    model.WarnModeMismatch,
				Message: "edit requested but the model returned full files; files were overwritten",
			})
			s.logger.Warn("model returned files in edit mode", "files", len(result.Files))
		}
		if err := s.ws.WriteFiles(ctx, result.Files); err != nil {
			return model.Response{}, err
		}
		files, err := s.ws.Snapshot(ctx)
		if err != nil {
			return model.Response{}, err
		}
		resp.Files = files
	case model.ResultEdits:
		if len(seed) > 0 {
			s.logger.Info("seeding empty workspace from client files", "files", len(seed))
			if err := s.ws.WriteFiles(ctx, seed); err != nil {
				return model.Response{}, err
			}
		}
		report, err := s.ws.ApplyPatches(ctx, result.Edits)
		if err != nil {
			return model.Response{}, err
		}
		resp.IsEdit = true
		resp.Files = report.Files
		resp.Warnings = append(resp.Warnings, report.Warnings...)
		resp.Changes = report.Changes
	}

	if html, err := preview.RenderExplanation(resp.Explain); err != nil {
		s.logger.Warn("render explanation", "error", err)
	} else {
		resp.ExplainHTML = html
	}

	mode := string(ModeGenerate)
	if editMode {
		mode = string(ModeEdit)
	}
	s.history = append(s.history, model.Turn{
		Prompt:    req.Prompt,
		Mode:      mode,
		Explain:   resp.Explain,
		Warnings:  resp.Warnings,
		CreatedAt: time.Now(),
	})
	s.logger.Info("request done", "mode", mode, "files", len(resp.Files), "warnings", len(resp.Warnings))
	return resp, nil
}

// editBase returns the files to edit. The persisted workspace wins over the
// client's list. When the workspace is empty the client files become the base
// and are returned as seed; they are only written once the model's edits have
// been accepted.
func (s *Session) editBase(ctx context.Context, clientFiles []model.FileArtifact) (current, seed []model.FileArtifact, err error) {
	current, err = s.ws.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(current) > 0 || len(clientFiles) == 0 {
		return current, nil, nil
	}
	byName := make(map[string]string, len(clientFiles))
	for _, f := range clientFiles {
		if err := workspace.ValidateName(f.Name); err != nil {
			s.logger.Warn("ignoring client file", "file", f.Name, "error", err)
			continue
		}
		byName[f.Name] = f.Content
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		seed = append(seed, model.FileArtifact{Name: name, Content: byName[name]})
	}
	return seed, seed, nil
}

// Ensure creates the session's workspace directory without running a request.
func (s *Session) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Ensure(ctx)
}

// Files returns the current workspace snapshot.
func (s *Session) Files(ctx context.Context) ([]model.FileArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Snapshot(ctx)
}

// History returns a copy of the turns recorded so far.
func (s *Session) History() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Turn, len(s.history))
	copy(out, s.history)
	return out
}
