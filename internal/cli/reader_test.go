package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single line", input: "test input\n", want: []string{"test input"}},
		{name: "extra whitespace", input: "  test input  \n", want: []string{"test input"}},
		{name: "empty line", input: "\n", want: []string{""}},
		{name: "several lines", input: "one\ntwo\n", want: []string{"one", "two"}},
		{name: "final line without newline", input: "one\ntwo", want: []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))

			var got []string
			for {
				line, err := r.ReadLine(context.Background())
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				got = append(got, line)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_ContextCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLineReader(pr).ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}
