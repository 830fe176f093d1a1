package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"robotconsole/internal/notify"
	"robotconsole/internal/service"

	"github.com/fatih/color"
)

// terminalNotifier 把提示输出为彩色行
type terminalNotifier struct {
	w io.Writer
}

func newTerminalNotifier(w io.Writer) *terminalNotifier {
	return &terminalNotifier{w: w}
}

func (n *terminalNotifier) Notify(level notify.Level, text string) {
	switch level {
	case notify.LevelSuccess:
		color.New(color.FgGreen).Fprintf(n.w, "✔ %s\n", text)
	case notify.LevelWarning:
		color.New(color.FgYellow).Fprintf(n.w, "! %s\n", text)
	default:
		color.New(color.FgRed, color.Bold).Fprintf(n.w, "✘ %s\n", text)
	}
}

// promptConfirmer 在终端询问 y/N；assumeYes 时直接确认
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newPromptConfirmer(in *bufio.Reader, out io.Writer, assumeYes bool) *promptConfirmer {
	return &promptConfirmer{in: in, out: out, assumeYes: assumeYes}
}

func (p *promptConfirmer) Confirm(_ context.Context, prompt service.Prompt) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	color.New(color.FgHiCyan, color.Bold).Fprintln(p.out, prompt.Title)
	fmt.Fprintf(p.out, "%s\n%s? [y/N] ", prompt.Body, prompt.OkText)

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
