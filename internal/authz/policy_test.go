package authz

import (
	"testing"

	"quadralivre/internal/models"
)

func TestOwnerNeverCreatesReservations(t *testing.T) {
	if Permit(models.RoleOwner, OpCreateReservation, "", "o1") {
		t.Fatal("owner must not be allowed to create reservations")
	}
	if Permit(models.RoleOwner, OpCreateReservation, "o1", "o1") {
		t.Fatal("owning the venue must not change the answer")
	}
}

func TestAdminNeverBooksOrRates(t *testing.T) {
	if Permit(models.RoleAdmin, OpCreateReservation, "", "a1") {
		t.Fatal("admin must not create reservations")
	}
	if Permit(models.RoleAdmin, OpRateReservation, "a1", "a1") {
		t.Fatal("admin must not rate reservations")
	}
}

func TestAdminRunsApprovalWorkflow(t *testing.T) {
	if !Permit(models.RoleAdmin, OpApproveVenue, "", "a1") {
		t.Fatal("admin must approve venues")
	}
	if !Permit(models.RoleAdmin, OpRejectVenue, "", "a1") {
		t.Fatal("admin must reject venues")
	}
	if Permit(models.RoleUser, OpApproveVenue, "", "u1") {
		t.Fatal("user must not approve venues")
	}
	if Permit(models.RoleOwner, OpRejectVenue, "o1", "o1") {
		t.Fatal("owner must not reject venues, not even their own")
	}
}

func TestVenueMutationRequiresOwnershipOrAdmin(t *testing.T) {
	if !Permit(models.RoleOwner, OpUpdateVenue, "o1", "o1") {
		t.Fatal("owner must update their own venue")
	}
	if Permit(models.RoleOwner, OpUpdateVenue, "o1", "o2") {
		t.Fatal("owner must not update someone else's venue")
	}
	if !Permit(models.RoleAdmin, OpDeleteVenue, "o1", "a1") {
		t.Fatal("admin must delete any venue")
	}
	if Permit(models.RoleUser, OpDeleteVenue, "o1", "u1") {
		t.Fatal("user must not delete someone else's venue")
	}
}

func TestUsersAndOwnersCreateVenues(t *testing.T) {
	if !Permit(models.RoleUser, OpCreateVenue, "", "u1") {
		t.Fatal("user must create venues")
	}
	if !Permit(models.RoleOwner, OpCreateVenue, "", "o1") {
		t.Fatal("owner must create venues")
	}
	if Permit(models.RoleAdmin, OpCreateVenue, "", "a1") {
		t.Fatal("admin must not create venues")
	}
}

func TestCancelRequiresMatchedIdentity(t *testing.T) {
	if !Permit(models.RoleUser, OpCancelReservation, "u1", "u1") {
		t.Fatal("booking user must cancel their reservation")
	}
	if Permit(models.RoleUser, OpCancelReservation, "u1", "u2") {
		t.Fatal("stranger must not cancel someone else's reservation")
	}
	if !Permit(models.RoleAdmin, OpCancelReservation, "u1", "a1") {
		t.Fatal("admin must cancel any reservation")
	}
}

func TestRatingOnlyByBookingUser(t *testing.T) {
	if !Permit(models.RoleUser, OpRateReservation, "u1", "u1") {
		t.Fatal("booking user must rate their reservation")
	}
	if Permit(models.RoleUser, OpRateReservation, "u1", "u2") {
		t.Fatal("another user must not rate the reservation")
	}
}
