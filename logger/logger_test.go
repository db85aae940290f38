package logger_test

import (
	"strings"
	"testing"

	"github.com/scidaf/daf/logger"
	"github.com/stretchr/testify/require"
)

func TestBufferLogger(t *testing.T) {
	l := logger.NewBufferLogger()
	l.Infof("opened dataset %s", "cells")
	l.Errorf("missing scalar: %s", "version")

	out, err := l.ReadAll()
	require.NoError(t, err)
	require.True(t, strings.Contains(string(out), "opened dataset cells"))
	require.True(t, strings.Contains(string(out), "missing scalar: version"))
}

func TestNopLogger(t *testing.T) {
	// NopLogger must never panic regardless of call shape.
	logger.NopLogger.Debugf("x")
	logger.NopLogger.WithPrefix("p").Infof("y")
}
