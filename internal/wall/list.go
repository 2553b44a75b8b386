package wall

import (
	"fmt"

	"smswall/internal/logger"
	"smswall/internal/models"
)

// List wraps the list-centric operations for one shortcode.
type List struct {
	Shortcode string
	wall      *Wall
}

// List returns a handle for the list with the given shortcode. The list may
// or may not exist; every operation checks what it needs.
func (w *Wall) List(shortcode string) *List {
	return &List{Shortcode: shortcode, wall: w}
}

// Exists reports whether the list exists
func (l *List) Exists() (bool, error) {
	return l.wall.lists.Exists(l.Shortcode)
}

// IsOwner reports whether number owns this list
func (l *List) IsOwner(number string) (bool, error) {
	return l.wall.lists.IsOwner(l.Shortcode, number)
}

// IsPublic reports whether anyone may join, or only owners may add members.
// The list must exist.
func (l *List) IsPublic() (bool, error) {
	list, err := l.wall.lists.Get(l.Shortcode)
	if err != nil {
		return false, err
	}
	if list == nil {
		return false, commandErrorf("The list %s doesn't exist.", l.Shortcode)
	}
	return list.IsPublic, nil
}

// OnlyOwnersCanPost reports whether posting is restricted to owners. The
// list must exist.
func (l *List) OnlyOwnersCanPost() (bool, error) {
	list, err := l.wall.lists.Get(l.Shortcode)
	if err != nil {
		return false, err
	}
	if list == nil {
		return false, commandErrorf("The list %s doesn't exist.", l.Shortcode)
	}
	return list.OwnerOnly, nil
}

// Create creates the list with initialOwner as first member and owner. New
// lists allow member posting and public joining.
func (l *List) Create(initialOwner string) error {
	cfg := l.wall.cfg

	if !cfg.Wall.AllowListCreation {
		return commandErrorf("Sorry, creating new lists is disabled.")
	}
	if !l.wall.isValidShortcode(l.Shortcode) {
		return commandErrorf("The shortcode you selected is invalid. Please choose a number between %d and %d.",
			cfg.Wall.MinShortcode, cfg.Wall.MaxShortcode)
	}

	exists, err := l.Exists()
	if err != nil {
		return err
	}
	if exists {
		return commandErrorf("The shortcode '%s' is already in use.", l.Shortcode)
	}

	logger.Infof("Creating list %s", l.Shortcode)
	list := &models.MailingList{Shortcode: l.Shortcode, OwnerOnly: false, IsPublic: true}
	if err := l.wall.lists.Create(list, initialOwner); err != nil {
		return err
	}

	l.wall.send(models.Message{
		Sender:    cfg.Wall.AppNumber,
		Recipient: initialOwner,
		Body:      fmt.Sprintf("You've been added to the list '%s'.", l.Shortcode),
	})
	return nil
}

// Delete removes the list. Unconfirmed deletes are parked as a pending
// confirmation instead of mutating anything; confirmed deletes remove the
// list and all its memberships and ownerships atomically, then notify every
// former member.
func (l *List) Delete(msg models.Message, confirmed bool) error {
	if !confirmed {
		return l.wall.addPendingAction(msg)
	}

	logger.Infof("Deleting list %s", l.Shortcode)
	members, err := l.wall.lists.Delete(l.Shortcode)
	if err != nil {
		return err
	}

	for _, m := range members {
		l.wall.send(models.Message{
			Sender:    l.wall.cfg.Wall.AppNumber,
			Recipient: m,
			Body:      fmt.Sprintf("The list %s has been deleted, and all members (including you!) have been removed.", l.Shortcode),
		})
	}
	l.wall.reply(msg, fmt.Sprintf("The list %s has been deleted.", l.Shortcode))
	return nil
}

// AddUser adds number as a member and notifies them. Adding an existing
// member changes nothing and sends nothing.
func (l *List) AddUser(number string) error {
	exists, err := l.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return commandErrorf("The list %s doesn't exist.", l.Shortcode)
	}

	logger.Infof("Adding user '%s' to list '%s'", number, l.Shortcode)
	added, err := l.wall.lists.AddMember(l.Shortcode, number)
	if err != nil {
		return err
	}
	if !added {
		logger.Debugf("User '%s' is already on list '%s', skipping notification", number, l.Shortcode)
		return nil
	}

	l.wall.send(models.Message{
		Sender:    l.wall.cfg.Wall.AppNumber,
		Recipient: number,
		Body:      fmt.Sprintf("You've been added to the list '%s'.", l.Shortcode),
	})
	return nil
}

// RemoveUser removes number from the membership and, with it, from the
// ownership set.
func (l *List) RemoveUser(number string) error {
	logger.Infof("Removing user '%s' from list '%s'", number, l.Shortcode)
	return l.wall.lists.RemoveMember(l.Shortcode, number)
}

// SetOwnerOnlyPosting updates the posting policy. The list must exist.
func (l *List) SetOwnerOnlyPosting(ownerOnly bool) error {
	exists, err := l.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return commandErrorf("The list %s doesn't exist.", l.Shortcode)
	}
	return l.wall.lists.SetOwnerOnly(l.Shortcode, ownerOnly)
}

// SetPublic updates the join policy. The list must exist.
func (l *List) SetPublic(isPublic bool) error {
	exists, err := l.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return commandErrorf("The list %s doesn't exist.", l.Shortcode)
	}
	return l.wall.lists.SetPublic(l.Shortcode, isPublic)
}

// MakeOwner grants number ownership, adding them as a member first so
// ownership always implies membership.
func (l *List) MakeOwner(number string) error {
	if err := l.AddUser(number); err != nil {
		return err
	}
	logger.Infof("Making user '%s' owner of list '%s'", number, l.Shortcode)
	return l.wall.lists.AddOwner(l.Shortcode, number)
}

// UnmakeOwner revokes number's ownership. Their membership stays.
func (l *List) UnmakeOwner(number string) error {
	logger.Infof("Removing user '%s' as owner of list '%s'", number, l.Shortcode)
	return l.wall.lists.RemoveOwner(l.Shortcode, number)
}

// Post fans the message out to every member except the sender. Each copy is
// sent from the list shortcode, so replies go back to the list, and the body
// is annotated with the sender's identity.
func (l *List) Post(msg models.Message) error {
	logger.Infof("Posting to list '%s' message: %s", l.Shortcode, msg)

	members, err := l.wall.lists.Members(l.Shortcode)
	if err != nil {
		return err
	}

	name, err := l.wall.names.GetName(msg.Sender)
	if err != nil {
		return err
	}
	label := msg.Sender
	if name != "" {
		label = fmt.Sprintf("%s (%s)", name, msg.Sender)
	}
	body := fmt.Sprintf("%s: %s", label, msg.Body)

	for _, m := range members {
		if m == msg.Sender {
			continue
		}
		l.wall.send(models.Message{
			Sender:    l.Shortcode,
			Recipient: m,
			Subject:   msg.Subject,
			Body:      body,
		})
	}
	return nil
}
