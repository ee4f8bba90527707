package main

import (
	golog "github.com/lobpang/roadgo/pkg/log"
)

func newLogger() golog.Logger {
	return golog.NewDefaultLogger(debug)
}
