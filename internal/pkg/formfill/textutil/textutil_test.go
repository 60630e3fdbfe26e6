package textutil_test

import (
	"testing"

	"github.com/kart-io/formfill/internal/pkg/formfill/textutil"
	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	// 相同输入应产生相同输出
	hash1 := textutil.HashContent("test")
	hash2 := textutil.HashContent("test")
	assert.Equal(t, hash1, hash2)

	// 不同输入应产生不同输出
	hash3 := textutil.HashContent("different")
	assert.NotEqual(t, hash1, hash3)

	// 哈希应为64字符的十六进制字符串
	assert.Len(t, hash1, 64)
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "短于限制",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "等于限制",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "超过限制",
			input:    "hello world",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "中文字符",
			input:    "你好世界",
			maxLen:   2,
			expected: "你好",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.TruncateString(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSplitMarkdownSections(t *testing.T) {
	content := `Intro text before any heading.

# Experience

## Acme Corp

Senior engineer, 2019-2023.

### Projects

Built the billing system.

#### Details

Too deep to keep as a separate level.

# Education

BSc Computer Science.`

	sections := textutil.SplitMarkdownSections(content)
	assert.Len(t, sections, 5)

	assert.Equal(t, "", sections[0].HeadingPath)
	assert.Contains(t, sections[0].Content, "Intro text")

	assert.Equal(t, "Experience > Acme Corp", sections[1].HeadingPath)
	assert.Contains(t, sections[1].Content, "Senior engineer")

	assert.Equal(t, "Experience > Acme Corp > Projects", sections[2].HeadingPath)

	// 第四层标题折叠到第三层
	assert.Equal(t, "Experience > Acme Corp > Details", sections[3].HeadingPath)

	// 新的一级标题重置整条路径
	assert.Equal(t, "Education", sections[4].HeadingPath)
	assert.Contains(t, sections[4].Content, "BSc")
}

func TestSplitMarkdownSectionsNoHeadings(t *testing.T) {
	sections := textutil.SplitMarkdownSections("plain text without headings")
	assert.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].HeadingPath)
	assert.Equal(t, "plain text without headings", sections[0].Content)
}

func TestSplitMarkdownSectionsEmptySection(t *testing.T) {
	// 无正文的标题不产生段落
	sections := textutil.SplitMarkdownSections("# Empty\n\n# Filled\n\ncontent here")
	assert.Len(t, sections, 1)
	assert.Equal(t, "Filled", sections[0].HeadingPath)
}

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		expected  int // 期望的块数
	}{
		{
			name:      "短文本无需分割",
			text:      "hello",
			chunkSize: 10,
			overlap:   2,
			expected:  1,
		},
		{
			name:      "正常分割",
			text:      "hello world test",
			chunkSize: 5,
			overlap:   2,
			expected:  5,
		},
		{
			name:      "无重叠分割",
			text:      "abcdefghij",
			chunkSize: 5,
			overlap:   0,
			expected:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := textutil.SplitIntoChunks(tt.text, tt.chunkSize, tt.overlap)
			assert.Len(t, chunks, tt.expected)
		})
	}
}

func TestSplitIntoChunksOverlap(t *testing.T) {
	chunks := textutil.SplitIntoChunks("abcdefghij", 4, 2)
	assert.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, chunks)
}
