package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentDuration(t *testing.T) {
	seg := SpeechSegment{Speaker: "manager", Text: "a", StartTime: 1.5, EndTime: 4.0}
	assert.InDelta(t, 2.5, seg.Duration(), 1e-9)
}

func TestNew_DefaultSpeakerIDs(t *testing.T) {
	tr := New(nil, "", "", nil)
	assert.Equal(t, "manager", tr.ManagerID)
	assert.Equal(t, "member", tr.MemberID)
	assert.Nil(t, tr.TotalDuration)
}

func TestSortedSegments(t *testing.T) {
	tr := New([]SpeechSegment{
		{Speaker: "member", Text: "c", StartTime: 10.0, EndTime: 12.0},
		{Speaker: "manager", Text: "a", StartTime: 0.0, EndTime: 3.0},
		{Speaker: "member", Text: "b", StartTime: 4.0, EndTime: 6.0},
	}, "manager", "member", nil)

	sorted := tr.SortedSegments()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a", sorted[0].Text)
	assert.Equal(t, "b", sorted[1].Text)
	assert.Equal(t, "c", sorted[2].Text)

	// 原始切片不被修改
	assert.Equal(t, "c", tr.Segments[0].Text)
}

func TestSortedSegments_StableOnEqualStart(t *testing.T) {
	tr := New([]SpeechSegment{
		{Speaker: "manager", Text: "first", StartTime: 1.0, EndTime: 2.0},
		{Speaker: "member", Text: "second", StartTime: 1.0, EndTime: 3.0},
	}, "manager", "member", nil)

	sorted := tr.SortedSegments()
	assert.Equal(t, "first", sorted[0].Text)
	assert.Equal(t, "second", sorted[1].Text)
}

func TestPlainText(t *testing.T) {
	tr := New([]SpeechSegment{
		{Speaker: "member", Text: "네, 안녕하세요.", StartTime: 4.0, EndTime: 5.2},
		{Speaker: "manager", Text: "안녕하세요.", StartTime: 0.0, EndTime: 3.5},
	}, "manager", "member", nil)

	assert.Equal(t, "manager: 안녕하세요. member: 네, 안녕하세요.", tr.PlainText())
}

func TestPlainText_Empty(t *testing.T) {
	tr := New(nil, "manager", "member", nil)
	assert.Equal(t, "", tr.PlainText())
}
