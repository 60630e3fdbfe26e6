// Package textutil 提供简历文本分块相关的工具函数。
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxHeadingDepth 是块元数据中保留的标题层级上限。
const MaxHeadingDepth = 3

// HeadingSeparator 拼接标题路径时使用的分隔符。
const HeadingSeparator = " > "

// HashContent 计算文本的 SHA-256 哈希值，用于文档去重。
func HashContent(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// Section 表示标题切分后的一段文本及其标题路径。
type Section struct {
	// HeadingPath 是该段落的标题路径（最多 MaxHeadingDepth 层）。
	HeadingPath string
	// Content 是标题下的正文。
	Content string
}

var headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// SplitMarkdownSections 按 Markdown 标题切分文本。
// 每段携带至多 MaxHeadingDepth 层的标题路径；标题前的导语段路径为空。
func SplitMarkdownSections(content string) []Section {
	parts := headingRegex.Split(content, -1)
	headings := headingRegex.FindAllStringSubmatch(content, -1)

	// path[i] 保存第 i+1 层当前生效的标题
	var path [MaxHeadingDepth]string
	var sections []Section

	appendSection := func(content string, depth int) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		var labels []string
		for i := 0; i < depth && i < MaxHeadingDepth; i++ {
			if path[i] != "" {
				labels = append(labels, path[i])
			}
		}
		sections = append(sections, Section{
			HeadingPath: strings.Join(labels, HeadingSeparator),
			Content:     content,
		})
	}

	// 第一个分片位于任何标题之前
	appendSection(parts[0], 0)

	for i, h := range headings {
		level := len(h[1])
		if level > MaxHeadingDepth {
			level = MaxHeadingDepth
		}
		path[level-1] = strings.TrimSpace(h[2])
		for j := level; j < MaxHeadingDepth; j++ {
			path[j] = ""
		}
		if i+1 < len(parts) {
			appendSection(parts[i+1], level)
		}
	}

	return sections
}

// SplitIntoChunks 将文本分割成重叠的块。
// chunkSize 是每个块的大小（Unicode 字符数），overlap 是块之间的重叠大小。
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	step := chunkSize - overlap

	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[i:end])
		chunks = append(chunks, chunk)
		if end == len(runes) {
			break
		}
	}

	return chunks
}
