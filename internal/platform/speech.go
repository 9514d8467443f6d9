// Package platform wires host speech tools into the core speech interfaces.
package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrEmptyCommand = errors.New("empty command")

// defaultSynthesizers are tried in order when no TTS command is configured.
var defaultSynthesizers = []string{"espeak-ng", "espeak", "say"}

// CommandSynthesizer speaks text by running a command with the text as its
// last argument.
type CommandSynthesizer struct {
	name string
	args []string
}

func NewCommandSynthesizer(command string) (*CommandSynthesizer, error) {
	name, args, err := splitCommand(command)
	if err != nil {
		return nil, err
	}
	return &CommandSynthesizer{name: name, args: args}, nil
}

func (s *CommandSynthesizer) Speak(ctx context.Context, text string) error {
	args := append(append([]string(nil), s.args...), text)
	cmd := exec.CommandContext(ctx, s.name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// DetectSynthesizer returns a synthesizer for command, or for the first
// known TTS tool on PATH when command is empty. It returns nil when nothing
// is available.
func DetectSynthesizer(command string) *CommandSynthesizer {
	if command != "" {
		syn, err := NewCommandSynthesizer(command)
		if err != nil {
			return nil
		}
		return syn
	}
	for _, name := range defaultSynthesizers {
		if path, err := exec.LookPath(name); err == nil {
			return &CommandSynthesizer{name: path}
		}
	}
	return nil
}

// CommandRecognizer captures one utterance by running a command with the
// language tag as its last argument and reading the transcript from stdout.
type CommandRecognizer struct {
	name string
	args []string
}

func NewCommandRecognizer(command string) (*CommandRecognizer, error) {
	name, args, err := splitCommand(command)
	if err != nil {
		return nil, err
	}
	return &CommandRecognizer{name: name, args: args}, nil
}

func (r *CommandRecognizer) Recognize(ctx context.Context, language string) (string, error) {
	args := append(append([]string(nil), r.args...), language)
	cmd := exec.CommandContext(ctx, r.name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w: %s", r.name, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}

func splitCommand(command string) (string, []string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, ErrEmptyCommand
	}
	return fields[0], fields[1:], nil
}
