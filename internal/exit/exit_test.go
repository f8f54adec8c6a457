package exit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		code   int
		output string
	}{
		{name: "false is silent", result: False(), code: CodeFalse, output: ""},
		{name: "usage", result: Usagef("bad path %q", "a["), code: CodeUsage, output: "bad path \"a[\"\n"},
		{name: "io", result: IOf("read %s", "x.json"), code: CodeIO, output: "read x.json\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.result.Output = &buf
			tt.result.Print()

			assert.Equal(t, tt.code, tt.result.ExitCode)
			assert.Equal(t, tt.output, buf.String())
		})
	}
}

func TestResult_AsError(t *testing.T) {
	var err error = Usagef("oops")

	var res *Result
	assert.True(t, errors.As(err, &res))
	assert.Equal(t, "oops", err.Error())
	assert.Equal(t, CodeUsage, res.ExitCode)
}
