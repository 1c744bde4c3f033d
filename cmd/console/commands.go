package main

import (
	"fmt"
	"strconv"
	"strings"
)

type commandKind int

const (
	cmdChat commandKind = iota
	cmdRoll
	cmdCheck
	cmdEquip
	cmdUnequip
	cmdName
	cmdClass
	cmdGender
	cmdWorld
	cmdScript
	cmdHelp
)

type command struct {
	kind  commandKind
	arg   string
	sides int
}

const helpText = `Commands:
• /roll N      Roll a free N-sided die
• /check       Resolve the pending check
• /equip ID    Equip an inventory item
• /unequip S   Clear a slot (mainHand, offHand, head, chest, hands, legs, feet, accessory)
• /name X      Rename your character
• /class X     Change your class label
• /gender X    Change gender
• /world FILE  Load the world setting from a text file
• /script FILE Load the adventure script from a text file
• /help        Show this help
• Ctrl+Y       Copy the latest Game Master reply
• Ctrl+C       Quit`

// parseCommand turns a line of input into a command. Anything not starting
// with a slash is chat.
func parseCommand(input string) (command, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{kind: cmdChat, arg: input}, nil
	}

	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	needArg := func(kind commandKind) (command, error) {
		if arg == "" {
			return command{}, fmt.Errorf("%s needs an argument", name)
		}
		return command{kind: kind, arg: arg}, nil
	}

	switch strings.ToLower(name) {
	case "/roll":
		sides, err := strconv.Atoi(arg)
		if err != nil || sides < 2 {
			return command{}, fmt.Errorf("usage: /roll N with N of at least 2")
		}
		return command{kind: cmdRoll, sides: sides}, nil
	case "/check":
		return command{kind: cmdCheck}, nil
	case "/equip":
		return needArg(cmdEquip)
	case "/unequip":
		return needArg(cmdUnequip)
	case "/name":
		return needArg(cmdName)
	case "/class":
		return needArg(cmdClass)
	case "/gender":
		return needArg(cmdGender)
	case "/world":
		return needArg(cmdWorld)
	case "/script":
		return needArg(cmdScript)
	case "/help":
		return command{kind: cmdHelp}, nil
	}
	return command{}, fmt.Errorf("unknown command %s, try /help", name)
}
