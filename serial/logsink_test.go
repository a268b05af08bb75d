package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogSinkAccumulatesOutput(t *testing.T) {
	s := NewLogSink()
	for _, b := range []byte("PASS\n") {
		s.Write(b)
	}
	assert.Equal(t, []byte("PASS\n"), s.Output())
}

func TestLogSinkOutputIsACopy(t *testing.T) {
	s := NewLogSink()
	s.Write('A')
	out := s.Output()
	out[0] = 'Z'
	assert.Equal(t, []byte("A"), s.Output(), "mutating a returned snapshot must not affect the sink")
}

func TestLogSinkHandlesMultipleLines(t *testing.T) {
	s := NewLogSink()
	for _, b := range []byte("line one\nline two\n") {
		s.Write(b)
	}
	assert.Equal(t, []byte("line one\nline two\n"), s.Output())
}
