package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled, colored messages to the terminal. Info output is
// gated behind the --verbose flag; warnings and errors always print.
type Logger struct {
	Verbose bool
}

var logger = &Logger{}

func (l *Logger) Infof(msg string, args ...any) {
	if l.Verbose {
		fmt.Fprintf(os.Stdout, color.GreenString("[info] ")+msg+"\n", args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.YellowString("[warn] ")+msg+"\n", args...)
}

func (l *Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.RedString("[error] ")+msg+"\n", args...)
}
