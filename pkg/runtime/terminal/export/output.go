package export

import (
	"io"
	"os"
)

// Output binds reporters to one destination writer. Commands ask it for a
// reporter in the format their flags selected.
type Output struct {
	writer io.Writer
}

func NewOutput(writer io.Writer) *Output {
	if writer == nil {
		writer = os.Stdout
	}
	return &Output{writer: writer}
}

func (o *Output) Reporter(format string) (*Reporter, error) {
	return NewReporter(o.writer, format)
}
