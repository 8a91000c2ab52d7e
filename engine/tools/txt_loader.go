package tools

import (
	"context"
	"fmt"

	deeprag "deeprag/engine/core"
)

// TxtLoaderTool reads one text document and returns its contents verbatim.
// Content agents whose file was too large to inline at assembly time call
// it at query time instead.
type TxtLoaderTool struct {
	loader deeprag.TextLoader
}

func NewTxtLoaderTool(loader deeprag.TextLoader) *TxtLoaderTool {
	return &TxtLoaderTool{loader: loader}
}

func (t *TxtLoaderTool) Name() string {
	return "txt_loader"
}

func (t *TxtLoaderTool) Invoke(ctx context.Context, args map[string]any, sly *deeprag.SideChannel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fileName := deeprag.ToString(args["file_name"], "")
	if fileName == "" {
		fileName = deeprag.ToString(args["file"], "")
	}
	if fileName == "" {
		return "", fmt.Errorf("txt loader needs a file_name argument")
	}

	content, err := t.loader.ReadText(fileName)
	if err != nil {
		return "", fmt.Errorf("failed to load %q: %w", fileName, err)
	}
	return content, nil
}
