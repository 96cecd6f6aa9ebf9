// AngelaMos | 2026
// commands.go

package tui

import (
	"strings"
)

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdLogin
	cmdRegister
	cmdLogout
	cmdStatus
	cmdClear
	cmdHelp
	cmdUpgrade
	cmdQuit
)

type command struct {
	kind commandKind
	name string
	args []string
}

// parseCommand recognises slash commands. ok is false for chat text.
func parseCommand(input string) (command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{}, false
	}

	fields := strings.Fields(input[1:])
	if len(fields) == 0 {
		return command{kind: cmdUnknown}, true
	}

	name := strings.ToLower(fields[0])
	cmd := command{name: name, args: fields[1:]}

	switch name {
	case "login":
		cmd.kind = cmdLogin
	case "register":
		cmd.kind = cmdRegister
	case "logout":
		cmd.kind = cmdLogout
	case "status":
		cmd.kind = cmdStatus
	case "clear", "cls":
		cmd.kind = cmdClear
	case "help", "h", "?":
		cmd.kind = cmdHelp
	case "upgrade":
		cmd.kind = cmdUpgrade
	case "quit", "q", "exit":
		cmd.kind = cmdQuit
	default:
		cmd.kind = cmdUnknown
	}
	return cmd, true
}

const welcomeText = `Welcome to QHub! I can help you create and run quantum computing programs.

Commands:
  /login <email> <password>                Log in to your account
  /register <email> <password> [username]  Create a new account
  /upgrade                                 Upgrade your plan
  /help                                    Show help
  /quit                                    Exit QHub

Describe what quantum computation you'd like to perform, and I'll generate the code for you.`

const helpText = `QHub Commands
  /login <email> <password>                Log in to your QHub account
  /register <email> <password> [username]  Create a new account
  /logout                                  End this session
  /upgrade                                 Upgrade to Pro for more quantum backends
  /status                                  Show your current account status
  /clear                                   Clear the chat history
  /help                                    Show this help message
  /quit                                    Exit QHub

Keyboard Shortcuts
  Ctrl+C, Ctrl+Q   Exit QHub
  PgUp/PgDn        Scroll through messages
  Enter            Send message`
