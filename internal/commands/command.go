package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/everyframe/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeRemove  Type = "rm"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Name    string
	Cadence model.Cadence
}

type IDArgs struct {
	ID uint64
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *IDArgs
	Remove *IDArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch head {
	case "add":
		return parseAdd(input, args)
	case "done", "toggle":
		return parseID(input, TypeDone, args)
	case "rm", "remove":
		return parseID(input, TypeRemove, args)
	case "refresh":
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd accepts "add daily|weekly <name>". The name keeps its inner
// spacing collapsed to single spaces.
func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a cadence (daily|weekly) and a name"}
	}
	cadence, err := model.ParseCadence(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown cadence %q, want daily or weekly", args[0])}
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Name: name, Cadence: cadence}}, nil
}

func parseID(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one task id", typ)}
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task id %q", args[0])}
	}
	cmd := Command{Type: typ, Raw: raw}
	if typ == TypeDone {
		cmd.Done = &IDArgs{ID: id}
	} else {
		cmd.Remove = &IDArgs{ID: id}
	}
	return cmd, nil
}
