package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want Block
	}{
		{"   ", spacer(12)},
		{"1. Parties", paragraph(StyleNumbered, "1. Parties")},
		{"  12.Term of lease ", paragraph(StyleNumbered, "12.Term of lease")},
		{"TERMS AND CONDITIONS:", paragraph(StyleHeader, "TERMS AND CONDITIONS")},
		{"WITNESSES", paragraph(StyleHeader, "WITNESSES")},
		{"A", paragraph(StyleNormal, "A")},
		{"Rent: 100", paragraph(StyleNormal, "Rent: 100")},
		{"NOTE: pay on time", paragraph(StyleNormal, "NOTE: pay on time")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyLine(tt.line), "line %q", tt.line)
	}
}

func TestBuildStoryLayout(t *testing.T) {
	blocks := BuildStory("AGREEMENT\n\n1. Rent", "generate-document", "Rs 100", fixedNow)

	want := []Block{
		paragraph(StyleTitle, "AI LEGAL COMPANION"),
		paragraph(StyleNormal, "Generated on March 05, 2024"),
		spacer(20),
		paragraph(StyleHeader, "Generate Document"),
		spacer(20),
		paragraph(StyleHeader, "AGREEMENT"),
		spacer(12),
		paragraph(StyleNumbered, "1. Rent"),
		spacer(20),
		paragraph(StyleHeader, "STAMP DUTY REQUIREMENT"),
		paragraph(StyleNormal, "Required Stamp Paper Value: Rs. Rs 100"),
		paragraph(StyleNormal, stampNote),
		spacer(20),
		spacer(40),
		paragraph(StyleNormal, signatureRule),
		paragraph(StyleNormal, "Signature"),
		spacer(20),
		paragraph(StyleNormal, signatureRule),
		paragraph(StyleNormal, "Date"),
	}
	if diff := cmp.Diff(want, blocks); diff != "" {
		t.Fatalf("story mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStoryWithoutStamp(t *testing.T) {
	blocks := BuildStory("hello", "summarize", "", fixedNow)
	for _, b := range blocks {
		assert.NotEqual(t, stampHeading, b.Text)
	}
	assert.Len(t, blocks, 6+6)
}

func TestActionTitle(t *testing.T) {
	assert.Equal(t, "Check Document", ActionTitle("check-document"))
	assert.Equal(t, "Analyze Risk", ActionTitle("ANALYZE-RISK"))
	assert.Equal(t, "Document", ActionTitle("  "))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "summarize-20240305-140709.pdf", Filename("summarize", fixedNow))
	assert.Equal(t, "document-20240305-140709.pdf", Filename("", fixedNow))
	assert.Equal(t, "a-b-20240305-140709.pdf", Filename("a\"; b", fixedNow))
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer("")
	data, err := r.Render(BuildStory("1. Café clause\nPLAIN TEXT", "summarize", "Rs 10", fixedNow))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "%%EOF")
}

func TestRenderPageBreak(t *testing.T) {
	data, err := NewRenderer("").Render([]Block{
		paragraph(StyleTitle, "one"),
		{Kind: KindPageBreak},
		paragraph(StyleNormal, "two"),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "/Count 2")
}

func TestRenderMissingFont(t *testing.T) {
	_, err := NewRenderer("/nonexistent/font.ttf").Render(BuildStory("x", "summarize", "", fixedNow))
	require.Error(t, err)
}

func TestExtractTextRejectsInvalidInput(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText(nil)
	require.ErrorIs(t, err, ErrNoText)

	_, err = e.ExtractText([]byte("definitely not a pdf"))
	require.Error(t, err)
}
