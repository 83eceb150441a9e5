package pipeline

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommandKind says how a command line is rendered by the generators.
type CommandKind int

const (
	// RawLine is emitted verbatim, e.g. a continuation of a "run: |" block.
	RawLine CommandKind = iota
	// ActionReference is a "uses:" line naming a platform action.
	ActionReference
	// ActionParameter is a "with:" line opening the parameters of the preceding action.
	ActionParameter
	// ShellCommand is a "run:" line; each one becomes its own named step.
	ShellCommand
)

const (
	usesPrefix = "uses:"
	withPrefix = "with:"
	runPrefix  = "run:"
)

func (k CommandKind) String() string {
	switch k {
	case ActionReference:
		return "action"
	case ActionParameter:
		return "param"
	case ShellCommand:
		return "shell"
	default:
		return "raw"
	}
}

// Command is a single authored command line, classified once when the stage
// is written rather than re-parsed by every generator.
type Command struct {
	Kind CommandKind
	// Value is the text after the prefix for actions, parameters and shell
	// commands, and the whole line for raw lines.
	Value string
}

func Uses(ref string) Command { return Command{Kind: ActionReference, Value: ref} }
func With(v string) Command   { return Command{Kind: ActionParameter, Value: v} }
func Run(cmd string) Command  { return Command{Kind: ShellCommand, Value: cmd} }
func Raw(line string) Command { return Command{Kind: RawLine, Value: line} }

// ParseCommand classifies a command line by its literal prefix.
func ParseCommand(line string) Command {
	switch {
	case strings.HasPrefix(line, usesPrefix):
		return Uses(strings.TrimSpace(line[len(usesPrefix):]))
	case strings.HasPrefix(line, withPrefix):
		return With(strings.TrimSpace(line[len(withPrefix):]))
	case strings.HasPrefix(line, runPrefix):
		return Run(strings.TrimSpace(line[len(runPrefix):]))
	default:
		return Raw(line)
	}
}

// ParseCommands classifies every line, dropping blank ones.
func ParseCommands(lines []string) []Command {
	cmds := make([]Command, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		cmds = append(cmds, ParseCommand(l))
	}
	return cmds
}

// String renders the command back to its authored line form.
func (c Command) String() string {
	var prefix string
	switch c.Kind {
	case ActionReference:
		prefix = usesPrefix
	case ActionParameter:
		prefix = withPrefix
	case ShellCommand:
		prefix = runPrefix
	default:
		return c.Value
	}
	if c.Value == "" {
		return prefix
	}
	return prefix + " " + c.Value
}

// Lines renders commands back to their line form.
func Lines(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}

func (c Command) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	var line string
	if err := node.Decode(&line); err != nil {
		return err
	}
	*c = ParseCommand(line)
	return nil
}

func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var line string
	if err := json.Unmarshal(data, &line); err != nil {
		return err
	}
	*c = ParseCommand(line)
	return nil
}
