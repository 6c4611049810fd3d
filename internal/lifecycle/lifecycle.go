// Package lifecycle holds the item/request state machine: pure decision
// logic over current states, with no storage access. The store layer calls
// these checks inside the same transaction that applies the effects, so a
// decision is never made on stale state.
package lifecycle

import (
	"slices"

	"github.com/campushare/campushare/internal/model"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// chains maps item kind to its ordered, forward-only status chain.
var chains = map[string][]string{
	model.KindDonate: {model.StatusAvailable, model.StatusClaimed, model.StatusCompleted},
	model.KindLend:   {model.StatusAvailable, model.StatusClaimed, model.StatusInUse, model.StatusReturned},
}

// ValidStatuses returns the statuses an item of the given kind can hold,
// in transition order. Returns nil for an unknown kind.
func ValidStatuses(kind string) []string {
	return chains[kind]
}

// NextStatus returns the status that follows current in the kind's chain.
// ok is false if current is terminal for the kind, or unknown.
func NextStatus(kind, current string) (next string, ok bool) {
	chain := chains[kind]
	i := slices.Index(chain, current)
	if i < 0 || i+1 >= len(chain) {
		return "", false
	}
	return chain[i+1], true
}

// CanCreateRequest decides whether actor may request item. Any number of
// pending requests may exist per item; the only per-actor rule is that
// owners cannot request their own items.
func CanCreateRequest(item *model.Item, actor Actor) error {
	if item == nil {
		return NotFound("item not found")
	}
	if item.OwnerID == actor.ID {
		return InvalidInput("you cannot request your own item")
	}
	return nil
}

// CanApprove decides whether actor may approve req for item.
// otherApproved must report whether any other request on the same item is
// already Approved, read inside the approval transaction.
func CanApprove(item *model.Item, req *model.Request, actor Actor, otherApproved bool) error {
	if req == nil {
		return NotFound("request not found")
	}
	if item == nil {
		return NotFound("item not found")
	}
	if item.OwnerID != actor.ID && !actor.IsAdmin() {
		return Forbidden("only the item owner or an admin can approve requests")
	}
	if otherApproved {
		return Conflict("item already has an approved request")
	}
	return nil
}

// CanReject decides whether actor may reject req for item.
func CanReject(item *model.Item, req *model.Request, actor Actor) error {
	if req == nil {
		return NotFound("request not found")
	}
	if item == nil {
		return NotFound("item not found")
	}
	if item.OwnerID != actor.ID && !actor.IsAdmin() {
		return Forbidden("only the item owner or an admin can reject requests")
	}
	return nil
}

// CanCancel decides whether actor may cancel (delete) req. Only the
// requester can cancel, and never once the request is approved.
func CanCancel(req *model.Request, actor Actor) error {
	if req == nil {
		return NotFound("request not found")
	}
	if req.UserID != actor.ID {
		return Forbidden("you can only cancel your own requests")
	}
	if req.Status == model.RequestApproved {
		return InvalidState("cannot cancel an approved request")
	}
	return nil
}

// CanAdvance decides whether actor may move item to target. Transitions are
// strictly forward along the kind's chain, one step at a time; RETURNED and
// COMPLETED are terminal.
func CanAdvance(item *model.Item, actor Actor, target string) error {
	if item == nil {
		return NotFound("item not found")
	}
	if item.OwnerID != actor.ID {
		return Forbidden("only the item owner can update status")
	}
	chain := chains[item.Kind]
	if !slices.Contains(chain, target) {
		return InvalidState("status %q is not valid for %s items", target, item.Kind)
	}
	next, ok := NextStatus(item.Kind, item.Status)
	if !ok {
		return InvalidState("item status %s is terminal", item.Status)
	}
	if target != next {
		return InvalidState("cannot move item from %s to %s; next status is %s", item.Status, target, next)
	}
	return nil
}

// CanEdit decides whether actor may edit item's fields. Editing is limited
// to the owner and to items that are still AVAILABLE; status and kind are
// never editable through this path.
func CanEdit(item *model.Item, actor Actor) error {
	if item == nil {
		return NotFound("item not found")
	}
	if item.OwnerID != actor.ID {
		return Forbidden("only the item owner can update this item")
	}
	if item.Status != model.StatusAvailable {
		return InvalidState("cannot update item with status %s; only AVAILABLE items can be edited", item.Status)
	}
	return nil
}

// CanDelete decides whether actor may delete item. Owners and admins may
// delete, but only while the item is AVAILABLE; anything later in the chain
// has a live request attached.
func CanDelete(item *model.Item, actor Actor) error {
	if item == nil {
		return NotFound("item not found")
	}
	if item.OwnerID != actor.ID && !actor.IsAdmin() {
		return Forbidden("only the item owner or an admin can delete this item")
	}
	if item.Status != model.StatusAvailable {
		return InvalidState("cannot delete item with status %s; only AVAILABLE items can be deleted", item.Status)
	}
	return nil
}
