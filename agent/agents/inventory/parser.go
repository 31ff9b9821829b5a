package inventory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

type op string

const (
	opCreate op = "create"
	opRead   op = "read"
	opList   op = "list"
	opUpdate op = "update"
	opDelete op = "delete"
)

// command is the structured form of one inventory request. Quantities
// are carried as parsed, including negatives, so validation can reject
// them with the original value instead of failing at the grammar level.
type command struct {
	op       op
	id       string
	name     string
	quantity *int
	category string
	filter   Filter
}

var (
	addPattern    = regexp.MustCompile(`(?i)^(?:add|create)\s+(?:(-?\d+)\s+)?(.+?)(?:\s+to\s+(?:the\s+)?inventory)?$`)
	createPattern = regexp.MustCompile(`(?i)^(?:create|add)\s+(?:an?\s+)?item\s+(?:named\s+|called\s+)?(.+?)(?:\s+with)?(?:\s+quantity\s+(-?\d+))?(?:\s+(?:in\s+)?category\s+(\S+))?$`)
	readPattern   = regexp.MustCompile(`(?i)^(?:get|read|show|describe)\s+(?:the\s+)?(?:item\s+)?(\S+)$`)
	listPattern   = regexp.MustCompile(`(?i)^(?:list|show|display)\s+(?:all\s+)?(?:the\s+)?(?:items|inventory|stock)\b(.*)$`)
	updatePattern = regexp.MustCompile(`(?i)^(?:update|set|change)\s+(?:item\s+)?(\S+)(?:'s)?\s+(quantity|name|category)\s+to\s+(.+)$`)
	renamePattern = regexp.MustCompile(`(?i)^rename\s+(?:item\s+)?(\S+)\s+to\s+(.+)$`)
	deletePattern = regexp.MustCompile(`(?i)^(?:delete|remove|drop)\s+(?:the\s+)?(?:item\s+)?(\S+)\s*$`)

	filterCategoryPattern = regexp.MustCompile(`(?i)\bin\s+(?:the\s+)?category\s+(\S+)`)
	filterNamePattern     = regexp.MustCompile(`(?i)\b(?:named|called|containing|matching)\s+(\S+)`)
	filterBetweenPattern  = regexp.MustCompile(`(?i)\bquantity\s+between\s+(-?\d+)\s+and\s+(-?\d+)`)
	filterAtLeastPattern  = regexp.MustCompile(`(?i)\b(?:at\s+least|minimum(?:\s+quantity)?(?:\s+of)?)\s+(-?\d+)`)
	filterAtMostPattern   = regexp.MustCompile(`(?i)\b(?:at\s+most|maximum(?:\s+quantity)?(?:\s+of)?)\s+(-?\d+)`)
)

// parseCommand maps one free-text inventory request onto a command.
// The grammar is deterministic: more specific patterns are tried before
// generic ones, and an unrecognized sentence is a validation error, not
// a guess.
func parseCommand(text string) (command, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return command{}, fmt.Errorf("%w: empty inventory request", contractx.ErrValidation)
	}

	if m := listPattern.FindStringSubmatch(text); m != nil {
		return command{op: opList, filter: parseFilter(m[1])}, nil
	}

	if m := updatePattern.FindStringSubmatch(text); m != nil {
		return parseUpdate(m[1], m[2], m[3])
	}
	if m := renamePattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[2])
		return command{op: opUpdate, id: m[1], name: name}, nil
	}

	if m := deletePattern.FindStringSubmatch(text); m != nil {
		id := m[1]
		if isNoun(id) {
			return command{}, fmt.Errorf("%w: delete needs an item id", contractx.ErrValidation)
		}
		return command{op: opDelete, id: id}, nil
	}

	if m := createPattern.FindStringSubmatch(text); m != nil {
		cmd := command{op: opCreate, name: strings.TrimSpace(m[1]), category: m[3]}
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return command{}, fmt.Errorf("%w: quantity %q is not a number", contractx.ErrValidation, m[2])
			}
			cmd.quantity = &n
		}
		return cmd, nil
	}
	if m := addPattern.FindStringSubmatch(text); m != nil {
		cmd := command{op: opCreate, name: strings.TrimSpace(m[2])}
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return command{}, fmt.Errorf("%w: quantity %q is not a number", contractx.ErrValidation, m[1])
			}
			cmd.quantity = &n
		}
		return cmd, nil
	}

	if m := readPattern.FindStringSubmatch(text); m != nil {
		id := m[1]
		if isNoun(id) {
			return command{op: opList}, nil
		}
		return command{op: opRead, id: id}, nil
	}

	return command{}, fmt.Errorf("%w: unrecognized inventory request %q", contractx.ErrValidation, text)
}

func parseUpdate(id, field, value string) (command, error) {
	cmd := command{op: opUpdate, id: id}
	value = strings.TrimSpace(value)

	switch strings.ToLower(field) {
	case "quantity":
		n, err := strconv.Atoi(value)
		if err != nil {
			return command{}, fmt.Errorf("%w: quantity %q is not a number", contractx.ErrValidation, value)
		}
		cmd.quantity = &n
	case "name":
		cmd.name = value
	case "category":
		cmd.category = value
	}
	return cmd, nil
}

func parseFilter(tail string) Filter {
	var f Filter

	if m := filterCategoryPattern.FindStringSubmatch(tail); m != nil {
		f.Category = m[1]
	}
	if m := filterNamePattern.FindStringSubmatch(tail); m != nil {
		f.NameContains = m[1]
	}
	if m := filterBetweenPattern.FindStringSubmatch(tail); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		f.MinQuantity = &lo
		f.MaxQuantity = &hi
		return f
	}
	if m := filterAtLeastPattern.FindStringSubmatch(tail); m != nil {
		n, _ := strconv.Atoi(m[1])
		f.MinQuantity = &n
	}
	if m := filterAtMostPattern.FindStringSubmatch(tail); m != nil {
		n, _ := strconv.Atoi(m[1])
		f.MaxQuantity = &n
	}
	return f
}

// isNoun reports whether a token is a bare inventory noun rather than
// an item id.
func isNoun(tok string) bool {
	switch strings.ToLower(tok) {
	case "item", "items", "inventory", "stock":
		return true
	}
	return false
}
