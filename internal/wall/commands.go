package wall

import (
	"fmt"
	"sort"
	"strings"

	"smswall/internal/models"
)

// Fixed command vocabulary. Verbs are matched case-insensitively; keypad
// phones capitalize unpredictably.
type verb string

const (
	verbCreate      verb = "create"
	verbDelete      verb = "delete"
	verbHelp        verb = "help"
	verbJoin        verb = "join"
	verbLeave       verb = "leave"
	verbMakePublic  verb = "makepublic"
	verbMakePrivate verb = "makeprivate"
	verbMakeOpen    verb = "makeopen"
	verbMakeClosed  verb = "makeclosed"
	verbAdd         verb = "add"
	verbRemove      verb = "remove"
	verbAddOwner    verb = "addowner"
	verbRemoveOwner verb = "removeowner"
	verbSetName     verb = "setname"
	verbConfirm     verb = "confirm"
)

// commandInfo carries the static properties checked before a handler runs.
// appLevel commands must be sent to the application number; everything else
// must be sent directly to a list. minArgs/maxArgs bound the argument count
// (maxArgs -1 means unbounded).
type commandInfo struct {
	appLevel bool
	minArgs  int
	maxArgs  int
}

var commandTable = map[verb]commandInfo{
	verbCreate:      {appLevel: true, minArgs: 1, maxArgs: 1},
	verbDelete:      {appLevel: true, minArgs: 1, maxArgs: 1},
	verbSetName:     {appLevel: true, minArgs: 1, maxArgs: -1},
	verbConfirm:     {appLevel: true, minArgs: 0, maxArgs: 0},
	verbHelp:        {minArgs: 0, maxArgs: 1},
	verbJoin:        {minArgs: 0, maxArgs: 0},
	verbLeave:       {minArgs: 0, maxArgs: 0},
	verbMakePublic:  {minArgs: 0, maxArgs: 0},
	verbMakePrivate: {minArgs: 0, maxArgs: 0},
	verbMakeOpen:    {minArgs: 0, maxArgs: 0},
	verbMakeClosed:  {minArgs: 0, maxArgs: 0},
	verbAdd:         {minArgs: 1, maxArgs: 1},
	verbRemove:      {minArgs: 1, maxArgs: 1},
	verbAddOwner:    {minArgs: 1, maxArgs: 1},
	verbRemoveOwner: {minArgs: 1, maxArgs: 1},
}

// lookupVerb resolves a token to a known verb, case-insensitively.
func lookupVerb(token string) (verb, bool) {
	v := verb(strings.ToLower(token))
	_, ok := commandTable[v]
	return v, ok
}

// help is delivered through the same reply channel as command failures.
// With an argument it describes that one verb; unknown arguments fall back
// to the catalog.
var helpTexts = map[verb]string{
	verbCreate:      "Send 'create <number>' to %[1]s to create a new list with specified number.",
	verbDelete:      "Send 'delete <number>' to %[1]s to delete a list with specified number. Must be an owner of a list to delete it.",
	verbSetName:     "Send 'setname <name>' to %[1]s to set your name (displayed when you send messages).",
	verbJoin:        "Send 'join' to any list to join that list.",
	verbLeave:       "Send 'leave' to any list to leave that list.",
	verbMakePublic:  "Send 'makepublic' to any list you're an owner of to allow anyone to join; otherwise, list owners must add members.",
	verbMakePrivate: "Send 'makeprivate' to any list you're an owner of to disallow people joining without an owner adding them.",
	verbMakeOpen:    "Send 'makeopen' to any list you're an owner of to allow all members to post to the list.",
	verbMakeClosed:  "Send 'makeclosed' to any list you're an owner of to only let list owners post to the list.",
	verbAdd:         "Send 'add <number>' to any list you're an owner of to add the specified number to the list.",
	verbRemove:      "Send 'remove <number>' to any list you're an owner of to remove the specified number from the list.",
	verbAddOwner:    "Send 'addowner <number>' to any list you're an owner of to make the specified number a list owner.",
	verbRemoveOwner: "Send 'removeowner <number>' to any list you're an owner of to remove the specified number as a list owner.",
	verbConfirm:     "Send 'confirm' to %[1]s to confirm a pending action.",
}

// looksLikeCommand is a permissive pre-filter: anything that might have been
// intended as a command goes through dispatch, so malformed near-commands
// earn a helpful error instead of being posted to a list.
func (w *Wall) looksLikeCommand(msg models.Message) bool {
	if strings.HasPrefix(msg.Body, w.cfg.Wall.CommandPrefix) {
		return true
	}
	if msg.Recipient == w.cfg.Wall.AppNumber {
		return true
	}
	fields := strings.Fields(msg.Body)
	if len(fields) == 0 {
		return false
	}
	_, known := lookupVerb(fields[0])
	return known
}

// dispatch validates the verb, its destination, and its argument count, then
// invokes the matching handler. Every rejection is a CommandError so the
// sender hears back.
func (w *Wall) dispatch(msg models.Message, cmd string, args []string, confirmed bool) error {
	appNumber := w.cfg.Wall.AppNumber

	if cmd == "" {
		return commandErrorf("Invalid command. Send 'help' to %s for a list of commands.", appNumber)
	}

	v, known := lookupVerb(cmd)
	if !known {
		return commandErrorf("The command '%s' doesn't exist. Try sending 'help' to %s.", cmd, appNumber)
	}
	info := commandTable[v]

	if info.appLevel && msg.Recipient != appNumber {
		return commandErrorf("The command '%s' must be sent to %s.", v, appNumber)
	}
	if !info.appLevel && msg.Recipient == appNumber {
		return commandErrorf("The command '%s' must be sent directly to a list.", v)
	}

	if len(args) < info.minArgs || (info.maxArgs >= 0 && len(args) > info.maxArgs) {
		return w.invalidCommand(string(v))
	}

	switch v {
	case verbCreate:
		return w.List(args[0]).Create(msg.Sender)
	case verbDelete:
		return w.cmdDelete(msg, args[0], confirmed)
	case verbHelp:
		return w.cmdHelp(args)
	case verbJoin:
		return w.cmdJoin(msg)
	case verbLeave:
		return w.List(msg.Recipient).RemoveUser(msg.Sender)
	case verbMakePublic:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.SetPublic(true) })
	case verbMakePrivate:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.SetPublic(false) })
	case verbMakeOpen:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.SetOwnerOnlyPosting(false) })
	case verbMakeClosed:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.SetOwnerOnlyPosting(true) })
	case verbAdd:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.AddUser(args[0]) })
	case verbRemove:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.RemoveUser(args[0]) })
	case verbAddOwner:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.MakeOwner(args[0]) })
	case verbRemoveOwner:
		return w.cmdOwnerToggle(msg, func(l *List) error { return l.UnmakeOwner(args[0]) })
	case verbSetName:
		return w.cmdSetName(msg, args)
	case verbConfirm:
		return w.confirmAction(msg.Sender)
	}

	// Unreachable: every verb in commandTable is handled above.
	return commandErrorf("The command '%s' doesn't exist. Try sending 'help' to %s.", cmd, appNumber)
}

func (w *Wall) invalidCommand(cmd string) error {
	if cmd == "" {
		return commandErrorf("Invalid command. Send 'help' to %s for a list of commands.", w.cfg.Wall.AppNumber)
	}
	return commandErrorf("Invalid command. Send 'help %s' to %s for info.", cmd, w.cfg.Wall.AppNumber)
}

// cmdDelete requires ownership before parking or executing the delete.
func (w *Wall) cmdDelete(msg models.Message, shortcode string, confirmed bool) error {
	l := w.List(shortcode)

	isOwner, err := l.IsOwner(msg.Sender)
	if err != nil {
		return err
	}
	if !isOwner {
		return commandErrorf("Sorry, you have to own a list to delete it.")
	}

	return l.Delete(msg, confirmed)
}

func (w *Wall) cmdHelp(args []string) error {
	if len(args) == 1 {
		if v, ok := lookupVerb(args[0]); ok {
			if text, ok := helpTexts[v]; ok {
				if strings.Contains(text, "%[1]s") {
					return commandErrorf(text, w.cfg.Wall.AppNumber)
				}
				return &CommandError{Reply: text}
			}
		}
	}

	verbs := make([]string, 0, len(commandTable))
	for v := range commandTable {
		verbs = append(verbs, string(v))
	}
	sort.Strings(verbs)

	return commandErrorf("For more info send 'help <command>' to %s. Available commands: %s.",
		w.cfg.Wall.AppNumber, strings.Join(verbs, ", "))
}

// cmdJoin lets anyone join a public list. Private lists require an owner to
// add the member.
func (w *Wall) cmdJoin(msg models.Message) error {
	l := w.List(msg.Recipient)

	isPublic, err := l.IsPublic()
	if err != nil {
		return err
	}
	if !isPublic {
		return commandErrorf("Sorry, to join the list '%s' a list owner must add you.", l.Shortcode)
	}

	return l.AddUser(msg.Sender)
}

// cmdOwnerToggle runs op on the addressed list after verifying the sender
// owns it.
func (w *Wall) cmdOwnerToggle(msg models.Message, op func(l *List) error) error {
	l := w.List(msg.Recipient)

	isOwner, err := l.IsOwner(msg.Sender)
	if err != nil {
		return err
	}
	if !isOwner {
		return commandErrorf("Sorry, only a list owner may do that.")
	}

	return op(l)
}

func (w *Wall) cmdSetName(msg models.Message, args []string) error {
	name := strings.Join(args, " ")
	if err := w.names.SetName(msg.Sender, name); err != nil {
		return err
	}
	w.reply(msg, fmt.Sprintf("Your name has been set to '%s'.", name))
	return nil
}
