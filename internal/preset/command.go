package preset

import "strings"

const commandSeparator = "=:="

// Command is the display form of "param1,param2=:=command". Messages are
// still sent verbatim; this is only used for listing.
type Command struct {
	Params  []string
	Command string
}

func ParseCommand(message string) Command {
	head, cmd, found := strings.Cut(message, commandSeparator)
	if !found {
		return Command{Command: message}
	}

	var params []string
	for _, p := range strings.Split(head, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}

	return Command{Params: params, Command: cmd}
}

func (c Command) String() string {
	if len(c.Params) == 0 {
		return c.Command
	}
	return strings.Join(c.Params, ",") + commandSeparator + c.Command
}
