package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = "11:35:23,scheduled task 032, START,37980\n" +
	"11:35:56,scheduled task 032, END,37980\n" +
	"11:36:11,scheduled task 796, START,57672"

func TestParse_ValidInput(t *testing.T) {
	rows, err := Parse(sampleLog)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{
		Timestamp:   TimeOfDay(11, 35, 23),
		Description: "scheduled task 032",
		Status:      StatusStart,
		ProcessID:   "37980",
	}, rows[0])

	assert.Equal(t, StatusEnd, rows[1].Status)
	assert.Equal(t, "57672", rows[2].ProcessID)
}

func TestParse_PreservesOrderAndCount(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		status := "START"
		if i%2 == 1 {
			status = "END"
		}
		lines = append(lines, "10:00:00,job,"+status+","+string(rune('a'+i%26)))
	}

	rows, err := Parse(strings.Join(lines, "\n"))
	require.NoError(t, err)
	require.Len(t, rows, len(lines))

	for i, row := range rows {
		assert.True(t, row.Status.Valid())
		if i%2 == 0 {
			assert.Equal(t, StatusStart, row.Status, "row %d", i)
		} else {
			assert.Equal(t, StatusEnd, row.Status, "row %d", i)
		}
	}
}

func TestParse_EmptyInput(t *testing.T) {
	rows, err := Parse("")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestParse_TrailingNewlineAndCRLF(t *testing.T) {
	rows, err := Parse("11:35:23,task,START,1\r\n11:35:56,task,END,1\r\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[1].ProcessID)
	assert.Equal(t, StatusEnd, rows[1].Status)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     ErrorKind
		sentinel error
		line     int
		message  string
	}{
		{
			name:     "invalid time",
			input:    "11:35:23,scheduled task 032, START,37980\n11:35:5d,scheduled task 032, END,37980\n11:36:11,scheduled task 796, START,57672",
			kind:     KindInvalidTimestamp,
			sentinel: ErrInvalidTimestamp,
			line:     2,
			message:  "invalid timestamp, line 2",
		},
		{
			name:     "unexpected column",
			input:    "11:35:23,scheduled task 032, START,37980\n11:35:56,scheduled task 032, END,37980\n11:36:11,scheduled task 796, START,57672,bad column",
			kind:     KindUnexpectedColumnCount,
			sentinel: ErrUnexpectedColumn,
			line:     3,
			message:  "unexpected column, line 3",
		},
		{
			name:     "invalid status",
			input:    "11:35:23,scheduled task 032, START,37980\n11:35:56,scheduled task 032,not a status,37980\n11:36:11,scheduled task 796, START,57672",
			kind:     KindInvalidStatus,
			sentinel: ErrInvalidStatus,
			line:     2,
			message:  "invalid status, line 2",
		},
		{
			name:     "lowercase status",
			input:    "11:35:23,task,start,1",
			kind:     KindInvalidStatus,
			sentinel: ErrInvalidStatus,
			line:     1,
			message:  "invalid status, line 1",
		},
		{
			name:     "not a status on first line",
			input:    "11:35:23,task,not-a-status,1",
			kind:     KindInvalidStatus,
			sentinel: ErrInvalidStatus,
			line:     1,
			message:  "invalid status, line 1",
		},
		{
			name:     "column count checked before timestamp",
			input:    "bad,task,START,1,extra",
			kind:     KindUnexpectedColumnCount,
			sentinel: ErrUnexpectedColumn,
			line:     1,
			message:  "unexpected column, line 1",
		},
		{
			name:     "timestamp checked before status",
			input:    "11:35,task,BOGUS,1",
			kind:     KindInvalidTimestamp,
			sentinel: ErrInvalidTimestamp,
			line:     1,
			message:  "invalid timestamp, line 1",
		},
		{
			name:     "too many time segments",
			input:    "11:35:23:01,task,START,1",
			kind:     KindInvalidTimestamp,
			sentinel: ErrInvalidTimestamp,
			line:     1,
			message:  "invalid timestamp, line 1",
		},
		{
			name:     "negative segment",
			input:    "11:-1:23,task,START,1",
			kind:     KindInvalidTimestamp,
			sentinel: ErrInvalidTimestamp,
			line:     1,
			message:  "invalid timestamp, line 1",
		},
		{
			name:     "blank line in the middle",
			input:    "11:35:23,task,START,1\n\n11:35:56,task,END,1",
			kind:     KindInvalidTimestamp,
			sentinel: ErrInvalidTimestamp,
			line:     2,
			message:  "invalid timestamp, line 2",
		},
		{
			name:     "missing process id",
			input:    "11:35:23,task,START",
			kind:     KindUnexpectedColumnCount,
			sentinel: ErrUnexpectedColumn,
			line:     1,
			message:  "unexpected column, line 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, rows, "no partial rows on error")
			assert.EqualError(t, err, tt.message)
			assert.True(t, errors.Is(err, tt.sentinel))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParse_StopsAtFirstError(t *testing.T) {
	_, err := Parse("11:35:23,task,BAD,1\n11:35:xx,task,START,1")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindInvalidStatus, perr.Kind)
	assert.Equal(t, 1, perr.Line)
}

func TestParse_OutOfRangeTimeIsAccepted(t *testing.T) {
	rows, err := Parse("99:99:99,odd,START,1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, TimeOfDay(99, 99, 99), rows[0].Timestamp)
}

func TestParse_TrimsFields(t *testing.T) {
	rows, err := Parse("  08:00:00 ,  backup job  ,  END  ,  42  ")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "backup job", rows[0].Description)
	assert.Equal(t, StatusEnd, rows[0].Status)
	assert.Equal(t, "42", rows[0].ProcessID)
}

func TestParse_LongLine(t *testing.T) {
	desc := strings.Repeat("x", 2*1024*1024)
	rows, err := Parse("11:35:23," + desc + ",START,1\n11:36:00,task,END,1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, desc, rows[0].Description)
}

func TestParse_BlankLineAfterContent(t *testing.T) {
	_, err := Parse("11:35:23,task,START,1\n\n")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindInvalidTimestamp, perr.Kind)
	assert.Equal(t, 2, perr.Line)
}

func TestParse_PlusSignedTimestamp(t *testing.T) {
	rows, err := Parse("+11:35:23,task,START,1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, TimeOfDay(11, 35, 23), rows[0].Timestamp)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "unexpected column", KindUnexpectedColumnCount.String())
	assert.Equal(t, "invalid timestamp", KindInvalidTimestamp.String())
	assert.Equal(t, "invalid status", KindInvalidStatus.String())
	assert.Equal(t, "ErrorKind(0)", ErrorKind(0).String())
}

func TestReadLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0644))

	data, err := ReadLog(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, sampleLog, data)
}

func TestReadLog_Errors(t *testing.T) {
	_, err := ReadLog(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = ReadLog(context.Background(), "/nonexistent/jobs.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input path")
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ReadLog(ctx, "/nonexistent/jobs.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck(t *testing.T) {
	raw := "11:35:23,task,START,1\n" +
		"11:35:2x,task,START,2\n" +
		"11:36:00,task,FINISH,1\n" +
		"11:37:00,task,END,1,extra\n" +
		"11:38:00,task,END,1"

	errs, lines := Check(raw)
	assert.Equal(t, 5, lines)
	require.Len(t, errs, 3)

	assert.Equal(t, KindInvalidTimestamp, errs[0].Kind)
	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, KindInvalidStatus, errs[1].Kind)
	assert.Equal(t, 3, errs[1].Line)
	assert.Equal(t, KindUnexpectedColumnCount, errs[2].Kind)
	assert.Equal(t, 4, errs[2].Line)
}

func TestCheck_Clean(t *testing.T) {
	errs, lines := Check(sampleLog)
	assert.Empty(t, errs)
	assert.Equal(t, strings.Count(sampleLog, "\n")+1, lines)
}
