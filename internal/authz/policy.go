// Package authz holds the role gating rules as a pure decision
// function, so every handler asks the same table instead of sprinkling
// role checks inline.
package authz

import "quadralivre/internal/models"

type Operation string

const (
	OpCreateVenue       Operation = "venue.create"
	OpUpdateVenue       Operation = "venue.update"
	OpDeleteVenue       Operation = "venue.delete"
	OpListOwnVenues     Operation = "venue.list_own"
	OpListPendingVenues Operation = "venue.list_pending"
	OpApproveVenue      Operation = "venue.approve"
	OpRejectVenue       Operation = "venue.reject"
	OpCreateReservation Operation = "reservation.create"
	OpCancelReservation Operation = "reservation.cancel"
	OpRateReservation   Operation = "reservation.rate"
	OpListReservations  Operation = "reservation.list"
)

// Permit decides whether a caller with the given role may perform op.
// resourceOwnerID is the owning identity of the target resource, empty
// when the operation has no target yet (creates, lists).
func Permit(role models.Role, op Operation, resourceOwnerID, callerID string) bool {
	if role == models.RoleAdmin {
		// Admins run the approval workflow and may touch any venue or
		// reservation, but never book for themselves.
		return op != OpCreateReservation && op != OpRateReservation
	}

	switch op {
	case OpCreateVenue:
		return role == models.RoleUser || role == models.RoleOwner
	case OpUpdateVenue, OpDeleteVenue:
		return resourceOwnerID == callerID
	case OpListOwnVenues:
		return role == models.RoleOwner || role == models.RoleUser
	case OpListReservations:
		return true
	case OpCreateReservation:
		return role == models.RoleUser
	case OpCancelReservation:
		// The reservation's user, or the venue's owner; the handler
		// passes whichever identity matched.
		return resourceOwnerID == callerID
	case OpRateReservation:
		return role == models.RoleUser && resourceOwnerID == callerID
	}

	return false
}
