// Package docreader reads technical work instruction documents into plain
// text. Unreadable or unsupported files degrade to a fixed demo document
// so the rest of the pipeline always has input.
package docreader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula/docx"
	"go.uber.org/zap"
)

// Read returns the text content of the document at path. Plain text and
// DOCX are supported; anything else, including missing files, yields the
// demo document.
func Read(path string, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	content, err := read(path)
	if err != nil {
		logger.Warn("document read failed, using demo content",
			zap.String("path", path),
			zap.Error(err),
		)
		return DemoContent()
	}
	if strings.TrimSpace(content) == "" {
		logger.Warn("document is empty, using demo content", zap.String("path", path))
		return DemoContent()
	}

	logger.Info("document read",
		zap.String("path", path),
		zap.Int("chars", len(content)),
	)
	return content
}

func read(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".docx":
		return readDOCX(path)
	default:
		return "", fmt.Errorf("unsupported file format: %s", path)
	}
}

func readDOCX(path string) (string, error) {
	reader, err := docx.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer reader.Close()

	text, err := reader.Text()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return text, nil
}

// DemoContent returns the fixed Japanese work instruction used when no
// real document is available.
func DemoContent() string {
	return `作業指示書 - 組み立て手順

ステップ1: 部品の準備
- M6×20mmボルト（六角）x 4個
- 工業用接着テープ 25mm幅 x 2ロール
- シール材 (シリコン系) x 1本

ステップ2: シャーシ組み立て
M6×20mmボルトを使用してシャーシを固定する。
締め付けトルク: 8-10 N·m

ステップ3: 配線作業
接着テープを使用してケーブルハーネスを固定する。
テープ幅25mm、長さ50mmで巻き付ける。

ステップ4: シール処理
シリコン系シール材を継ぎ目部分に塗布する。
硬化時間: 24時間

品質管理チェックポイント:
- ボルト締め付け確認
- 配線固定状態確認
- シール材塗布状態確認

使用工具:
- トルクレンチ (10N·m対応)
- ケーブルカッター
- シール材塗布用ガン`
}
