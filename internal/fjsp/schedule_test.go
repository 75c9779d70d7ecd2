package fjsp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSchedule(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected Schedule
	}{
		"yaml": {
			input: `
0:
  - {machine: 0, start: 0, end: 3}
1:
  - machine: 0
    start: 3
    end: 6
`,
			expected: Schedule{
				0: {{Machine: 0, Start: 0, End: 3}},
				1: {{Machine: 0, Start: 3, End: 6}},
			},
		},
		"json with string keys": {
			input: `{"0": [{"machine": 0, "start": 0, "end": 5}], "1": []}`,
			expected: Schedule{
				0: {{Machine: 0, Start: 0, End: 5}},
				1: {},
			},
		},
		"null operations": {
			input:    "0: null\n",
			expected: Schedule{0: {}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := ReadSchedule(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}
}

func TestReadSchedule_Malformed(t *testing.T) {
	tests := map[string]string{
		"not a mapping":       "- 1\n- 2\n",
		"job key not integer": "a: []\n",
		"job key float":       "1.5: []\n",
		"duplicate job":       `{"0": [], 0: []}`,
		"operations scalar":   "0: 5\n",
		"operation scalar":    "0: [5]\n",
		"missing end":         "0: [{machine: 0, start: 0}]\n",
		"extra field":         "0: [{machine: 0, start: 0, end: 5, job: 0}]\n",
		"float start":         "0: [{machine: 0, start: 0.5, end: 5}]\n",
		"string machine":      `{"0": [{"machine": "0", "start": 0, "end": 5}]}`,
		"null end":            "0: [{machine: 0, start: 0, end: null}]\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSchedule(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestWriteSchedule(t *testing.T) {
	s := Schedule{
		1: {{Machine: 0, Start: 3, End: 6}},
		0: {{Machine: 0, Start: 0, End: 3}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, s))
	assert.Equal(t, "0:\n- machine: 0\n  start: 0\n  end: 3\n1:\n- machine: 0\n  start: 3\n  end: 6\n", buf.String())

	again, err := ReadSchedule(&buf)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}
