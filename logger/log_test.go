package logger_test

import (
	"strings"
	"testing"

	"github.com/ricoh2a03/testnes/logger"
	"github.com/ricoh2a03/testnes/test"
)

func TestCentralLogger(t *testing.T) {
	logger.Clear()

	b := strings.Builder{}
	logger.Write(&b)
	test.ExpectEquality(t, b.String(), "")

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(&b)
	test.ExpectEquality(t, b.String(), "test: this is a test\n")
}

func TestRepeatedEntries(t *testing.T) {
	logger.Clear()

	logger.Log(logger.Allow, "test", "same entry")
	logger.Log(logger.Allow, "test", "same entry")
	logger.Log(logger.Allow, "test", "same entry")

	b := strings.Builder{}
	logger.Write(&b)
	test.ExpectEquality(t, b.String(), "test: same entry (repeat x3)\n")
}

func TestTail(t *testing.T) {
	logger.Clear()

	logger.Log(logger.Allow, "test", "one")
	logger.Log(logger.Allow, "test", "two")
	logger.Log(logger.Allow, "test", "three")

	b := strings.Builder{}
	logger.Tail(&b, 2)
	test.ExpectEquality(t, b.String(), "test: two\ntest: three\n")

	b.Reset()
	logger.Tail(&b, -1)
	test.ExpectEquality(t, b.String(), "test: one\ntest: two\ntest: three\n")
}
